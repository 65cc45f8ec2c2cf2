// Package auth defines the login and signup forms: their records, their
// validation schemas and the submitters that send them to the backend.
package auth

import (
	"context"

	"github.com/taskly-dev/taskly/pkg/authapi"
	"github.com/taskly-dev/taskly/pkg/form"
)

// Notification texts.
const (
	LoginSucceeded  = "Login successful!"
	LoginFailed     = "Login failed!"
	SignupSucceeded = "Signup successful!"
	SignupFailed    = "Signup failed!"
)

// Field names as posted by the pages.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRememberMe      = "rememberMe"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldConfirmPassword = "confirmPassword"
)

// namePattern admits ASCII letters, hyphens and whitespace. Whitespace covers
// the Unicode space separators as well as the ASCII control spaces.
const namePattern = `^[A-Za-z\p{Zs}\t\n\v\f\r\x{FEFF}\x{2028}\x{2029}-]+$`

// LoginFields is the state of the login form.
type LoginFields struct {
	Email      string
	Password   string
	RememberMe bool
}

// SignupFields is the state of the signup form.
type SignupFields struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

func emailField[T any](ptr func(*T) *string) form.Field[T] {
	return form.Text(FieldEmail, ptr,
		form.Required("Email is required"),
		form.Email("Must be a valid email address"),
	)
}

var loginSchema = form.NewSchema(
	emailField(func(f *LoginFields) *string { return &f.Email }),
	form.Password(FieldPassword, func(f *LoginFields) *string { return &f.Password },
		form.MinLength(4, "Password must be at least 4 characters"),
	),
	form.Checkbox(FieldRememberMe, func(f *LoginFields) *bool { return &f.RememberMe }),
)

var signupSchema = form.NewSchema(
	form.Text(FieldFirstName, func(f *SignupFields) *string { return &f.FirstName },
		form.Required("First name is required"),
		form.Pattern(namePattern, "Please enter a valid name format"),
	),
	form.Text(FieldLastName, func(f *SignupFields) *string { return &f.LastName },
		form.Required("Last name is required"),
		form.Pattern(namePattern, "Please enter a valid name format"),
	),
	emailField(func(f *SignupFields) *string { return &f.Email }),
	form.Password(FieldPassword, func(f *SignupFields) *string { return &f.Password },
		form.MinLength(8, "Password must be at least 8 characters"),
	),
	form.Password(FieldConfirmPassword, func(f *SignupFields) *string { return &f.ConfirmPassword },
		form.Required("Confirm password is required"),
	),
).Refine(FieldConfirmPassword, "Passwords don't match", func(f SignupFields) bool {
	return f.Password == f.ConfirmPassword
})

// LoginSchema returns the login validation schema.
func LoginSchema() *form.Schema[LoginFields] { return loginSchema }

// SignupSchema returns the signup validation schema.
func SignupSchema() *form.Schema[SignupFields] { return signupSchema }

// Backend is the auth backend the submitters call. *authapi.Client implements it.
type Backend interface {
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, req authapi.SignupRequest) error
}

// LoginSubmitter sends a validated login. RememberMe is not sent.
type LoginSubmitter struct {
	Backend Backend
}

// Submit implements form.Submitter.
func (s LoginSubmitter) Submit(ctx context.Context, f LoginFields) error {
	return s.Backend.Login(ctx, f.Email, f.Password)
}

// SignupSubmitter sends a validated signup. ConfirmPassword is not sent.
type SignupSubmitter struct {
	Backend Backend
}

// Submit implements form.Submitter.
func (s SignupSubmitter) Submit(ctx context.Context, f SignupFields) error {
	return s.Backend.Signup(ctx, authapi.SignupRequest{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Password:  f.Password,
	})
}

// NewLoginForm returns an empty login form wired to submitter.
// Options are applied after the login notification texts.
func NewLoginForm(submitter form.Submitter[LoginFields], opts ...form.Option) *form.Form[LoginFields] {
	opts = append([]form.Option{form.WithMessages(LoginSucceeded, LoginFailed)}, opts...)
	return form.New(loginSchema, LoginFields{}, submitter, opts...)
}

// NewSignupForm returns an empty signup form wired to submitter.
func NewSignupForm(submitter form.Submitter[SignupFields], opts ...form.Option) *form.Form[SignupFields] {
	opts = append([]form.Option{form.WithMessages(SignupSucceeded, SignupFailed)}, opts...)
	return form.New(signupSchema, SignupFields{}, submitter, opts...)
}
