package mockapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskly-dev/taskly/internal/errors"
	"github.com/taskly-dev/taskly/pkg/authapi"
)

func newServer(t *testing.T, config Config) (*Server, *httptest.Server) {
	t.Helper()
	config.Cost = bcrypt.MinCost
	config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(config)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func newClient(t *testing.T, srv *httptest.Server) *authapi.Client {
	t.Helper()
	c, err := authapi.New(srv.URL)
	if err != nil {
		t.Fatalf("authapi.New: %v", err)
	}
	return c
}

func TestSignupThenLogin(t *testing.T) {
	s, srv := newServer(t, Config{})
	c := newClient(t, srv)
	ctx := context.Background()

	err := c.Signup(ctx, authapi.SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "engine1843",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	if err := c.Login(ctx, "ada@example.com", "engine1843"); err != nil {
		t.Errorf("Login with signup credentials: %v", err)
	}
	// Emails match case-insensitively.
	if err := c.Login(ctx, "ADA@example.com", "engine1843"); err != nil {
		t.Errorf("Login with upper-case email: %v", err)
	}
}

func TestLoginRejected(t *testing.T) {
	s, srv := newServer(t, Config{})
	c := newClient(t, srv)
	if _, err := s.Register("Ada", "Lovelace", "ada@example.com", "engine1843"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name            string
		email, password string
	}{
		{"wrong password", "ada@example.com", "wrong"},
		{"unknown user", "bob@example.com", "engine1843"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Login(context.Background(), tt.email, tt.password)
			if !errors.HasCode(err, errors.CodeTransport) {
				t.Fatalf("expected T200, got %v", err)
			}
			if got := errors.UserMessage(err); got != MsgInvalidCredentials {
				t.Errorf("UserMessage = %q, want %q", got, MsgInvalidCredentials)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	_, srv := newServer(t, Config{})
	c := newClient(t, srv)
	req := authapi.SignupRequest{FirstName: "A", LastName: "B", Email: "a@b.co", Password: "password1"}

	if err := c.Signup(context.Background(), req); err != nil {
		t.Fatalf("first Signup: %v", err)
	}
	err := c.Signup(context.Background(), req)
	if got := errors.UserMessage(err); got != MsgEmailTaken {
		t.Errorf("UserMessage = %q, want %q", got, MsgEmailTaken)
	}
}

func TestSignupMissingFields(t *testing.T) {
	_, srv := newServer(t, Config{})

	form := url.Values{"email": {"a@b.co"}, "password": {"password1"}}
	resp, err := http.PostForm(srv.URL+SignupPath, form)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != MsgMissingFields {
		t.Errorf("message = %q", body["message"])
	}
}

func TestSignupPasswordTooLong(t *testing.T) {
	s, srv := newServer(t, Config{})

	long := strings.Repeat("a", 73)
	form := url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"password":  {long},
	}
	resp, err := http.PostForm(srv.URL+SignupPath, form)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != MsgPasswordTooLong {
		t.Errorf("message = %q", body["message"])
	}

	// 72 bytes is still accepted.
	if _, err := s.Register("Ada", "Lovelace", "ada@example.com", long[:72]); err != nil {
		t.Errorf("Register with 72 bytes: %v", err)
	}
}

func TestUnknownRoute(t *testing.T) {
	_, srv := newServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/other/", "text/plain", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDelay(t *testing.T) {
	_, srv := newServer(t, Config{Delay: 50 * time.Millisecond})

	start := time.Now()
	resp, err := http.PostForm(srv.URL+LoginPath, url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("response came after %v, want at least 50ms", elapsed)
	}
}

func TestConcurrentSignups(t *testing.T) {
	s, _ := newServer(t, Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Register("A", "B", "same@example.com", "password1")
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
