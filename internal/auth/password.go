package auth

import (
	"errors"
	"unicode/utf8"
)

const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("Password must be at least 8 characters long.")

// ValidatePassword applies the portal's rule for passwords it sets on behalf of
// a user.
func ValidatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
