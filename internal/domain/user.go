package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// User is an account on the remote API.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session pairs a bearer token with the user it was confirmed for.
type Session struct {
	Token string
	User  User
}

// Participant is one user with access to a trip.
type Participant struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// FullName joins first and last name.
func (p Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s looks like an email address.
func ValidateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: please enter your email", ErrValidation)
	}
	if !emailPattern.MatchString(s) {
		return fmt.Errorf("%w: please enter a valid email address", ErrValidation)
	}
	return nil
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Validate checks email format and that a password was given.
func (in LoginInput) Validate() error {
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if strings.TrimSpace(in.Password) == "" {
		return fmt.Errorf("%w: please enter your password", ErrValidation)
	}
	return nil
}

// RegisterInput holds the registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Validate checks names, email format and password length, in form order.
func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("%w: please enter your first name", ErrValidation)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: please enter your last name", ErrValidation)
	}
	if err := (LoginInput{Email: in.Email, Password: in.Password}).Validate(); err != nil {
		return err
	}
	if len(in.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	}
	return nil
}
