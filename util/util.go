package util

import "strings"

// Coalesce returns the first non-zero value, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// MaskSecret hides s for display, keeping the first visiblePrefix bytes.
// Strings no longer than visiblePrefix are fully masked and the empty
// string stays empty so unset values remain recognisable.
func MaskSecret(s string, visiblePrefix int) string {
	if s == "" {
		return ""
	}
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// MaskCookie masks the value of a raw "name=value" cookie string.
func MaskCookie(raw string) string {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return MaskSecret(raw, 0)
	}
	return strings.TrimSpace(name) + "=" + MaskSecret(value, 0)
}
