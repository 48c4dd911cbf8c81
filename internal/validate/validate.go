// Package validate centralizes input validation shared by every endpoint.
// Failures carry the exact user-facing message the client displays verbatim.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/foliohub/apiserver/types"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// Error is a validation failure with a user-facing message.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError constructs a validation error with the given user-facing message.
func NewError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// UsernameValid reports whether the username matches the allowed pattern.
func UsernameValid(username string) bool {
	return usernamePattern.MatchString(username)
}

// Username checks presence and format of a username.
func Username(username string) error {
	if strings.TrimSpace(username) == "" {
		return &Error{Message: "Username is required"}
	}
	if !UsernameValid(username) {
		return &Error{Message: "Invalid username format"}
	}
	return nil
}

// Password checks the minimum length of a registration password.
func Password(password string) error {
	if len(password) < MinPasswordLength {
		return &Error{Message: "Password must be at least 6 characters long"}
	}
	return nil
}

// NewPassword checks the minimum length of a replacement password.
func NewPassword(password string) error {
	if len(password) < MinPasswordLength {
		return &Error{Message: "New password must be at least 6 characters long"}
	}
	return nil
}

// Category checks that the category is one of the fixed upload buckets.
func Category(category string) error {
	for _, c := range types.Categories {
		if category == c {
			return nil
		}
	}
	return &Error{Message: "Invalid category"}
}

// FileName rejects names that would escape the category directory.
func FileName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return &Error{Message: "Invalid file name"}
	}
	return nil
}
