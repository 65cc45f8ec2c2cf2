package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantMsg    string
		wantCat    Category
		wantPublic string
	}{
		{
			name:    "validation",
			code:    CodeValidation,
			wantMsg: "Form validation failed",
			wantCat: CategoryValidation,
		},
		{
			name:    "transport",
			code:    CodeTransport,
			wantMsg: "Auth backend request failed",
			wantCat: CategoryTransport,
		},
		{
			name:       "unexpected response",
			code:       CodeUnexpectedResponse,
			wantMsg:    "Unexpected server response",
			wantCat:    CategoryTransport,
			wantPublic: "Unexpected server response",
		},
		{
			name:    "unknown error code",
			code:    "T999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Public != tt.wantPublic {
				t.Errorf("Public = %q, want %q", err.Public, tt.wantPublic)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(CodeTransport).Wrap(cause)

	want := "T200: Auth backend request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("signup: %w", New(CodeTransport).Wrap(New(CodeUnexpectedResponse)))

	if !HasCode(err, CodeTransport) {
		t.Error("expected T200 in chain")
	}
	if !HasCode(err, CodeUnexpectedResponse) {
		t.Error("expected T201 in chain")
	}
	if HasCode(err, CodeConfig) {
		t.Error("did not expect T300 in chain")
	}
	if HasCode(stderrors.New("plain"), CodeTransport) {
		t.Error("plain error has no code")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", stderrors.New("dial tcp: refused"), ""},
		{"transport without public", New(CodeTransport), ""},
		{"server message", New(CodeTransport).WithPublic("Invalid credentials"), "Invalid credentials"},
		{"unexpected response", New(CodeUnexpectedResponse), "Unexpected server response"},
		{"nested", fmt.Errorf("x: %w", New(CodeTransport).Wrap(New(CodeUnexpectedResponse))), "Unexpected server response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeConfig).WithDetail("api base URL is empty")
	out := err.Format()

	if !strings.Contains(out, "ERROR T300: Invalid configuration") {
		t.Errorf("Format() missing header:\n%s", out)
	}
	if !strings.Contains(out, "api base URL is empty") {
		t.Errorf("Format() missing detail:\n%s", out)
	}

	if got := err.FormatCompact(); got != "T300: Invalid configuration (api base URL is empty)" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("PrintError(plain) = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, New(CodeConfig))
	if !strings.Contains(buf.String(), "T300") {
		t.Errorf("PrintError(*Error) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than 10", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}
