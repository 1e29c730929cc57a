// Package util holds small helpers shared by the command and its packages.
package util
