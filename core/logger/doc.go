// Package logger provides structured logging utilities built on Go's standard slog package.
// It offers a factory with environment-specific configurations and a set of pre-built
// attribute helpers for the certificate pipeline's logging scenarios.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/certpipe/core/logger"
//
//	// Development: text format, debug level
//	log := logger.New(logger.WithDevelopment("certpipe"))
//
//	// Production: JSON format, info level
//	log := logger.New(logger.WithProduction("certpipe"))
//
//	log.Info("order finalized",
//		logger.Component("issuance"),
//		logger.Domain("example.com"),
//	)
//
// Attribute helpers follow the empty-Attr pattern: passing a nil error or empty
// value produces an attribute that slog drops, so call sites need no nil checks.
package logger
