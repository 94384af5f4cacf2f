// Package env reads typed values from the process environment.
package env

import (
	"os"
	"strconv"
	"strings"
)

// LookupInt returns the integer value of the named variable. The second
// result is false when the variable is unset or not an integer.
func LookupInt(name string) (int, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int returns the integer value of the named variable or fallback.
func Int(name string, fallback int) int {
	if v, ok := LookupInt(name); ok {
		return v
	}
	return fallback
}

// String returns the value of the named variable or fallback when it is
// unset or empty.
func String(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
