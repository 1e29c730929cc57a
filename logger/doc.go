// Package logger provides structured logging for restauth using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("jira-client").WithComponent("httpclient")
//	log.Debug("request sent", logger.Fields(logger.FieldMethod, "GET"))
package logger
