package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"/", "/", nil},
		{"", "/", nil},
		{"/login", "/login", nil},
		{"/login/", "/login", nil},
		{"//todos", "/todos", nil},
		{"/a/./b", "/a/b", nil},
		{"/a/../profile", "/profile", nil},
		{"/sign%2Dup", "/sign%2Dup", nil},
		{"/../secret", "", ErrPathEscapesRoot},
		{`/a\b`, "", ErrBackslashInPath},
		{"/a%00b", "", ErrNullByteInPath},
		{"/a%GG", "", ErrInvalidPercentEscape},
		{"/a%2", "", ErrInvalidPercentEscape},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalPathMiddleware(t *testing.T) {
	called := 0
	h := CanonicalPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))

	tests := []struct {
		method   string
		target   string
		status   int
		location string
	}{
		{http.MethodGet, "/login", http.StatusOK, ""},
		{http.MethodGet, "/login/?next=x", http.StatusMovedPermanently, "/login?next=x"},
		{http.MethodPost, "/sign-up/", http.StatusPermanentRedirect, "/sign-up"},
		{http.MethodGet, "/a%00b", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.status {
				t.Errorf("status %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
	if called != 1 {
		t.Errorf("next called %d times, want 1", called)
	}
}
