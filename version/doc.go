// Package version reports the build version of restauth binaries.
//
//	go build -ldflags "-X github.com/kbukum/restauth/version.Version=1.0.0" ./cmd/restauth
package version
