// Package validation holds the input shape checks shared by registration
// and the emergency forms.
package validation

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?254[0-9]{9}$|^0[0-9]{9}$`)
)

// Email reports whether s has the local@domain.tld shape.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Phone reports whether s is a Kenyan mobile number (+2547..., 2547... or
// 07...). Spaces are ignored.
func Phone(s string) bool {
	return phonePattern.MatchString(strings.ReplaceAll(s, " ", ""))
}

// Missing returns the names whose values are blank, in the given order.
func Missing(fields ...[2]string) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			out = append(out, f[0])
		}
	}
	return out
}
