// Package config loads service configuration with Viper.
//
// LoadConfig reads config.yml from the standard locations (or an explicit
// path), loads a .env file into the environment with godotenv, and lets
// environment variables override file values. A variable is matched to a
// nested key by its underscores, so JIRA_SHARED_SECRET sets
// jira.shared_secret. Only keys present in the file or declared by the
// target struct are bound; other variables are ignored.
//
//	var cfg AppConfig
//	err := config.LoadConfig("restauth", &cfg, config.WithConfigFile(path))
package config
