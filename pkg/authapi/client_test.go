package authapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	terrors "github.com/taskly-dev/taskly/internal/errors"
)

// captured is one request seen by the fake backend.
type captured struct {
	path   string
	fields map[string]string
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, <-chan captured, *atomic.Int32) {
	t.Helper()
	requests := make(chan captured, 8)
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart body, got %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		seen := captured{path: r.URL.Path, fields: make(map[string]string)}
		if r.MultipartForm != nil {
			for k, v := range r.MultipartForm.Value {
				seen.fields[k] = v[0]
			}
		}
		requests <- seen
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, requests, &calls
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestLoginSuccess(t *testing.T) {
	srv, requests, calls := newBackend(t, http.StatusOK, `{"token":"x"}`)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Login(context.Background(), "a@b.co", "abcd"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	seen := <-requests
	if calls.Load() != 1 {
		t.Errorf("expected exactly one request, got %d", calls.Load())
	}
	if seen.path != "/api/auth/login/" {
		t.Errorf("unexpected path %q", seen.path)
	}
	if got := keys(seen.fields); strings.Join(got, ",") != "email,password" {
		t.Errorf("payload must carry exactly email and password, got %v", got)
	}
	if seen.fields["email"] != "a@b.co" || seen.fields["password"] != "abcd" {
		t.Errorf("unexpected payload %v", seen.fields)
	}
}

func TestLoginStatusMustBe200(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusCreated, ``)
	c, _ := New(srv.URL)

	err := c.Login(context.Background(), "a@b.co", "abcd")
	if !terrors.HasCode(err, terrors.CodeUnexpectedResponse) {
		t.Fatalf("expected T201, got %v", err)
	}
	if got := terrors.UserMessage(err); got != "Unexpected server response" {
		t.Errorf("unexpected user message %q", got)
	}
}

func TestLoginServerMessage(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	c, _ := New(srv.URL)

	err := c.Login(context.Background(), "a@b.co", "wrong")
	if !terrors.HasCode(err, terrors.CodeTransport) {
		t.Fatalf("expected T200, got %v", err)
	}
	if got := terrors.UserMessage(err); got != "Invalid credentials" {
		t.Errorf("unexpected user message %q", got)
	}

	var te *terrors.Error
	if !errors.As(err, &te) || te.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401 on error, got %+v", te)
	}
}

func TestLoginNonJSONFailure(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusInternalServerError, `<html>oops</html>`)
	c, _ := New(srv.URL)

	err := c.Login(context.Background(), "a@b.co", "abcd")
	if got := terrors.UserMessage(err); got != "Unexpected server response" {
		t.Errorf("unexpected user message %q", got)
	}
}

func TestSignup(t *testing.T) {
	srv, requests, _ := newBackend(t, http.StatusCreated, `{"id":"1"}`)
	c, _ := New(srv.URL + "/")

	err := c.Signup(context.Background(), SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "abcdefgh",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	seen := <-requests
	if seen.path != "/api/users/signup/" {
		t.Errorf("unexpected path %q", seen.path)
	}
	if got := keys(seen.fields); strings.Join(got, ",") != "email,firstName,lastName,password" {
		t.Errorf("unexpected payload fields %v", got)
	}
}

func TestSignupStatusMustBe201(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusOK, ``)
	c, _ := New(srv.URL)

	err := c.Signup(context.Background(), SignupRequest{Email: "a@b.co"})
	if !terrors.HasCode(err, terrors.CodeUnexpectedResponse) {
		t.Errorf("expected T201 for 200 on signup, got %v", err)
	}
}

func TestBaseURLWithPrefix(t *testing.T) {
	srv, requests, _ := newBackend(t, http.StatusOK, ``)
	c, _ := New(srv.URL + "/backend")

	if err := c.Login(context.Background(), "a@b.co", "abcd"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if seen := <-requests; seen.path != "/backend/api/auth/login/" {
		t.Errorf("prefix lost: %q", seen.path)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := New(url)
	err := c.Login(context.Background(), "a@b.co", "abcd")
	if !terrors.HasCode(err, terrors.CodeTransport) {
		t.Fatalf("expected T200, got %v", err)
	}
	if got := terrors.UserMessage(err); got != "" {
		t.Errorf("network failures carry no user message, got %q", got)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	for _, raw := range []string{"", "api.example.com", "/relative"} {
		if _, err := New(raw); !terrors.HasCode(err, terrors.CodeConfig) {
			t.Errorf("New(%q): expected T300, got %v", raw, err)
		}
	}
}
