package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for category fields.
const (
	maxCategoryNameLen = 120
	maxShortDescLen    = 300
	maxLongDescLen     = 5_000
	maxOTPLen          = 12
)

// validateCategory checks category inputs and returns the first error found.
func validateCategory(name, shortDesc, longDesc string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 120 characters)."
	}
	if utf8.RuneCountInString(shortDesc) > maxShortDescLen {
		return "Short description is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(longDesc) > maxLongDescLen {
		return "Long description is too long (max 5,000 characters)."
	}
	return ""
}

// validateLogin checks the login form and returns the first error found.
func validateLogin(email, password string) string {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "Email and password are required."
	}
	if !strings.Contains(email, "@") {
		return "Enter a valid email address."
	}
	return ""
}

// validateOTP checks a one-time password submission.
func validateOTP(otp string) string {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return "Enter the code sent to you."
	}
	if len(otp) > maxOTPLen {
		return "The code is too long."
	}
	return ""
}
