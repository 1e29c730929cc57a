package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Site     string `mapstructure:"site" validate:"required,url"`
	Username string `mapstructure:"username" validate:"required_with=Password"`
	Password string `mapstructure:"password" validate:"required_with=Username"`
	UseToken bool   `mapstructure:"use_token"`
	Issuer   string `mapstructure:"issuer" validate:"required_if=UseToken true"`
	Mode     string `mapstructure:"mode" validate:"omitempty,oneof=verify_peer verify_none"`
}

func TestValidate_Valid(t *testing.T) {
	s := sample{Site: "https://jira.example.com", Username: "u", Password: "p"}
	if err := Validate(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		in    sample
		field string
		msg   string
	}{
		{"missing site", sample{}, "site", "is required"},
		{"bad site", sample{Site: "not a url"}, "site", "must be a valid URL"},
		{"username without password", sample{Site: "http://x", Username: "u"}, "password", "is required when username is set"},
		{"password without username", sample{Site: "http://x", Password: "p"}, "username", "is required when password is set"},
		{"token without issuer", sample{Site: "http://x", UseToken: true}, "issuer", "is required when use_token is enabled"},
		{"bad mode", sample{Site: "http://x", Mode: "loose"}, "mode", "must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if err == nil {
				t.Fatal("expected error")
			}
			var ve *Errors
			if !errors.As(err, &ve) {
				t.Fatalf("expected *Errors, got %T", err)
			}
			if !ve.Has(tc.field) {
				t.Errorf("expected error on %q, got %v", tc.field, err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected message containing %q, got %q", tc.msg, err.Error())
			}
		})
	}
}

func TestValidator_Programmatic(t *testing.T) {
	v := New()
	v.AddError("cert", "is required").Custom(false, "key", "is required when use_client_cert is set")
	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	err := v.Err()
	if got := err.Error(); got != "cert: is required; key: is required when use_client_cert is set" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestValidator_Merge(t *testing.T) {
	v := New()
	v.Merge(nil)
	if v.HasErrors() {
		t.Fatal("merging nil should not add errors")
	}
	v.Merge(Validate(sample{}))
	v.Merge(errors.New("plain"))
	ve := v.Err().(*Errors)
	if !ve.Has("site") {
		t.Errorf("expected site error after merge, got %v", ve)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(ve.Fields))
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("UseClientCert"); got != "use_client_cert" {
		t.Errorf("expected use_client_cert, got %q", got)
	}
}
