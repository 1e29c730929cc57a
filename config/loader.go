package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfigFileNotFound is returned when an explicitly requested file is missing.
var ErrConfigFileNotFound = errors.New("config file not found")

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	UserConfigDir() (string, error)
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment. Variables that are
// already set keep their value.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) UserConfigDir() (string, error) {
	return os.UserConfigDir()
}

// Resolver finds the config and env files of a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths of opts, searching the standard
// locations for any that are unset.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.firstExisting(r.configSearchPaths(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.firstExisting(r.envSearchPaths(serviceName))
	}
	return resolved
}

// configSearchPaths lists config.yml candidates, most specific first:
// the service's cmd directory, ./config, the working directory and
// finally the user config directory (e.g. ~/.config/restauth).
func (r *Resolver) configSearchPaths(serviceName string) []string {
	paths := make([]string, 0, 10)
	for _, prefix := range []string{".", "..", "../.."} {
		paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", prefix, serviceName))
	}
	paths = append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
	if dir, err := r.FileSystem.UserConfigDir(); err == nil && dir != "" {
		paths = append(paths, filepath.Join(dir, serviceName, "config.yml"))
	}
	return paths
}

// envSearchPaths lists .env.<service> and .env candidates.
func (r *Resolver) envSearchPaths(serviceName string) []string {
	names := []string{".env." + serviceName, ".env"}
	dirs := append(pathsByPrefix("cmd/"+serviceName), pathsByPrefix("config")...)
	dirs = append(dirs, pathsByPrefix("")...)

	paths := make([]string, 0, len(names)*len(dirs))
	for _, name := range names {
		for _, dir := range dirs {
			paths = append(paths, dir+name)
		}
	}
	return paths
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// pathsByPrefix returns path under the working directory and its two
// parents, each with a trailing slash.
func pathsByPrefix(path string) []string {
	if path == "" {
		return []string{"./", "../", "../../"}
	}
	return []string{
		"./" + path + "/",
		"../" + path + "/",
		"../../" + path + "/",
	}
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file path (optional)
	EnvFile    string // explicit .env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg.
//
// Values come from config.yml, then the process environment (after loading
// the .env file), later sources overriding earlier ones. Environment keys
// are matched against nested config keys, so JIRA_READ_TIMEOUT sets
// jira.read_timeout. Durations ("30s") and comma-separated lists decode
// into time.Duration and []string fields.
//
// Explicit files that do not exist are an error; searched files are optional.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	for _, explicit := range []string{lc.ConfigFile, lc.EnvFile} {
		if explicit != "" && !lc.FileSystem.Exists(explicit) {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, explicit)
		}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	return loadFromResolvedFiles(serviceName, cfg, files, lc.FileSystem)
}

func loadFromResolvedFiles(serviceName string, cfg interface{}, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}
	if err := autoBindEnvVars(v, cfg); err != nil {
		return err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", serviceName, err)
	}
	return nil
}

// autoBindEnvVars binds every environment variable to the known config keys
// it could stand for. Keys come from the loaded file and the fields of cfg;
// variables that match no key are ignored.
func autoBindEnvVars(v *viper.Viper, cfg interface{}) error {
	known := make(map[string]bool)
	for _, key := range v.AllKeys() {
		known[key] = true
	}
	for _, key := range structKeys(reflect.TypeOf(cfg), "") {
		known[key] = true
	}

	for _, env := range os.Environ() {
		name, _, ok := strings.Cut(env, "=")
		if !ok || name == "" {
			continue
		}
		for _, variant := range generateEnvKeyVariants(name) {
			if !known[variant] {
				continue
			}
			if err := v.BindEnv(variant, name); err != nil {
				return fmt.Errorf("bind %s to %s: %w", name, variant, err)
			}
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// structKeys lists the dotted mapstructure keys of the leaf fields of t.
func structKeys(t reflect.Type, prefix string) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t == timeType {
		return nil
	}

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if strings.Contains(opts, "squash") {
			keys = append(keys, structKeys(f.Type, prefix)...)
			continue
		}
		if name == "" {
			name = f.Name
		}
		key := prefix + strings.ToLower(name)

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != timeType {
			keys = append(keys, structKeys(ft, key+".")...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// generateEnvKeyVariants maps an environment variable name onto the config
// keys it may address, by turning each underscore prefix into nesting.
//
//	JIRA_USE_COOKIES -> [jira_use_cookies, jira.use.cookies, jira.use_cookies, jira_use.cookies]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{lowerKey, strings.ReplaceAll(lowerKey, "_", ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "_"))
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return removeDuplicates(variants)
}

func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
