package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/taskly-dev/taskly/pkg/authapi"
	"github.com/taskly-dev/taskly/pkg/form"
	"github.com/taskly-dev/taskly/pkg/toast"
)

// fakeBackend records calls without any network.
type fakeBackend struct {
	logins  atomic.Int32
	signups atomic.Int32
	signup  authapi.SignupRequest
	err     error
}

func (f *fakeBackend) Login(context.Context, string, string) error {
	f.logins.Add(1)
	return f.err
}

func (f *fakeBackend) Signup(_ context.Context, req authapi.SignupRequest) error {
	f.signups.Add(1)
	f.signup = req
	return f.err
}

func TestLoginSchema(t *testing.T) {
	tests := []struct {
		name   string
		fields LoginFields
		want   map[string]string
	}{
		{
			name:   "empty",
			fields: LoginFields{},
			want: map[string]string{
				FieldEmail:    "Email is required",
				FieldPassword: "Password must be at least 4 characters",
			},
		},
		{
			name:   "bad email",
			fields: LoginFields{Email: "not-an-email", Password: "abcd"},
			want:   map[string]string{FieldEmail: "Must be a valid email address"},
		},
		{
			name:   "short password",
			fields: LoginFields{Email: "a@b.co", Password: "abc"},
			want:   map[string]string{FieldPassword: "Password must be at least 4 characters"},
		},
		{
			name:   "valid",
			fields: LoginFields{Email: "a@b.co", Password: "abcd", RememberMe: true},
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := LoginSchema().Validate(tt.fields)
			if len(errs) != len(tt.want) {
				t.Fatalf("got %v, want %v", errs, tt.want)
			}
			for field, msg := range tt.want {
				if errs.Get(field) != msg {
					t.Errorf("%s: got %q, want %q", field, errs.Get(field), msg)
				}
			}
		})
	}
}

func validSignup() SignupFields {
	return SignupFields{
		FirstName:       "Mary Ann",
		LastName:        "Smith-Jones",
		Email:           "mary@example.com",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgh",
	}
}

func TestSignupSchema(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SignupFields)
		field  string
		want   string
	}{
		{"first name required", func(f *SignupFields) { f.FirstName = "" }, FieldFirstName, "First name is required"},
		{"first name format", func(f *SignupFields) { f.FirstName = "R2D2" }, FieldFirstName, "Please enter a valid name format"},
		{"last name required", func(f *SignupFields) { f.LastName = "" }, FieldLastName, "Last name is required"},
		{"last name format", func(f *SignupFields) { f.LastName = "O'Neil" }, FieldLastName, "Please enter a valid name format"},
		{"email", func(f *SignupFields) { f.Email = "nope" }, FieldEmail, "Must be a valid email address"},
		{"password length", func(f *SignupFields) { f.Password = "abcdefg"; f.ConfirmPassword = "abcdefg" }, FieldPassword, "Password must be at least 8 characters"},
		{"confirm required", func(f *SignupFields) { f.ConfirmPassword = "" }, FieldConfirmPassword, "Confirm password is required"},
		{"confirm mismatch", func(f *SignupFields) { f.ConfirmPassword = "abcdefghX" }, FieldConfirmPassword, "Passwords don't match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validSignup()
			tt.mutate(&fields)
			errs := SignupSchema().Validate(fields)
			if got := errs.Get(tt.field); got != tt.want {
				t.Errorf("%s: got %q, want %q (all: %v)", tt.field, got, tt.want, errs)
			}
		})
	}

	if errs := SignupSchema().Validate(validSignup()); !errs.Empty() {
		t.Errorf("valid signup rejected: %v", errs)
	}
}

func TestSignupSchemaNameWhitespace(t *testing.T) {
	for _, name := range []string{"Anne\u00a0Marie", "Anne\tMarie", "Anne\u2003Marie", "Anne\u3000Marie"} {
		fields := validSignup()
		fields.FirstName = name
		fields.LastName = name
		if errs := SignupSchema().Validate(fields); !errs.Empty() {
			t.Errorf("name %q rejected: %v", name, errs)
		}
	}

	fields := validSignup()
	fields.FirstName = "Anne\u200bMarie"
	if got := SignupSchema().Validate(fields).Get(FieldFirstName); got != "Please enter a valid name format" {
		t.Errorf("zero-width space: got %q", got)
	}
}

func TestLoginFormRequiredFieldsBlockSubmit(t *testing.T) {
	backend := &fakeBackend{}
	f := NewLoginForm(LoginSubmitter{Backend: backend})

	for _, fields := range []LoginFields{
		{Password: "abcd"},
		{Email: "a@b.co"},
		{},
	} {
		f.Reset()
		_ = f.Set(FieldEmail, fields.Email)
		_ = f.Set(FieldPassword, fields.Password)
		if err := f.Submit(context.Background(), toast.Discard); err == nil {
			t.Errorf("submit of %+v should fail validation", fields)
		}
	}
	if backend.logins.Load() != 0 {
		t.Errorf("backend called %d times for invalid input", backend.logins.Load())
	}
}

func TestSignupSubmitterDropsConfirm(t *testing.T) {
	backend := &fakeBackend{}
	f := NewSignupForm(SignupSubmitter{Backend: backend})
	v := validSignup()
	_ = f.Set(FieldFirstName, v.FirstName)
	_ = f.Set(FieldLastName, v.LastName)
	_ = f.Set(FieldEmail, v.Email)
	_ = f.Set(FieldPassword, v.Password)
	_ = f.Set(FieldConfirmPassword, v.ConfirmPassword)

	q := toast.NewQueue()
	if err := f.Submit(context.Background(), q); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := authapi.SignupRequest{FirstName: "Mary Ann", LastName: "Smith-Jones", Email: "mary@example.com", Password: "abcdefgh"}
	if backend.signup != want {
		t.Errorf("got %+v, want %+v", backend.signup, want)
	}
	if toasts := q.Drain(); len(toasts) != 1 || toasts[0].Message != SignupSucceeded {
		t.Errorf("unexpected toasts %+v", toasts)
	}
}

// TestLoginEndToEnd drives the login form through a real client against a
// fake backend that answers with status.
func TestLoginEndToEnd(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus form.Status
		wantToast  toast.Toast
		wantReset  bool
	}{
		{
			name:       "200 resets and notifies",
			status:     http.StatusOK,
			wantStatus: form.StatusSucceeded,
			wantToast:  toast.Toast{Level: toast.TypeSuccess, Message: LoginSucceeded},
			wantReset:  true,
		},
		{
			name:       "401 keeps state",
			status:     http.StatusUnauthorized,
			body:       `{"message":"Invalid credentials"}`,
			wantStatus: form.StatusFailed,
			wantToast:  toast.Toast{Level: toast.TypeError, Message: "Invalid credentials"},
		},
		{
			name:       "401 without message",
			status:     http.StatusUnauthorized,
			wantStatus: form.StatusFailed,
			wantToast:  toast.Toast{Level: toast.TypeError, Message: "Unexpected server response"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posted := make(chan map[string][]string, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseMultipartForm(1 << 20)
				posted <- r.MultipartForm.Value
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := authapi.New(srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			f := NewLoginForm(LoginSubmitter{Backend: client})
			_ = f.Set(FieldEmail, "a@b.co")
			_ = f.Set(FieldPassword, "abcd")
			_ = f.SetBool(FieldRememberMe, true)
			before := f.Values()

			q := toast.NewQueue()
			_ = f.Submit(context.Background(), q)

			got := <-posted
			if _, ok := got[FieldRememberMe]; ok {
				t.Error("rememberMe must not be sent")
			}
			if len(got) != 2 {
				t.Errorf("expected exactly email and password, got %v", got)
			}
			if f.Status() != tt.wantStatus {
				t.Errorf("status: got %v, want %v", f.Status(), tt.wantStatus)
			}
			if tt.wantReset && f.Values() != (LoginFields{}) {
				t.Errorf("state not reset: %+v", f.Values())
			}
			if !tt.wantReset && f.Values() != before {
				t.Errorf("state changed: %+v", f.Values())
			}
			toasts := q.Drain()
			if len(toasts) != 1 || toasts[0] != tt.wantToast {
				t.Errorf("toasts: got %+v, want %+v", toasts, tt.wantToast)
			}
		})
	}
}
