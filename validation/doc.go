// Package validation provides configuration validation for restauth.
//
// It supports struct tag validation (using the validator library) and
// programmatic checks with error collection. Both produce *Errors, whose
// field names follow the mapstructure tags of the validated struct.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Site string `mapstructure:"site" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(cert != "", "cert", "is required when use_client_cert is set")
//	err := v.Err()
package validation
