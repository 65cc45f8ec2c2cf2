// Package authapi is the HTTP client for the auth backend.
//
// Each call sends exactly one multipart POST and classifies the response.
// There are no retries and no timeout beyond the caller's context.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	terrors "github.com/taskly-dev/taskly/internal/errors"
)

// Endpoint paths, relative to the base URL.
const (
	LoginPath  = "api/auth/login/"
	SignupPath = "api/users/signup/"
)

const tracerName = "github.com/taskly-dev/taskly/pkg/authapi"

// maxErrorBody bounds how much of a failure response is read for a message.
const maxErrorBody = 64 << 10

// SignupRequest is the payload of a signup call.
type SignupRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Client talks to the auth backend. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (default: http.DefaultClient).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, terrors.New(terrors.CodeConfig).
			WithDetail(fmt.Sprintf("api base URL %q must be absolute", baseURL)).
			Wrap(err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		base:   u,
		http:   http.DefaultClient,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "authapi")
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Login posts email and password to the login endpoint.
// Success iff the backend answers 200.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.post(ctx, LoginPath, http.StatusOK, []field{
		{"email", email},
		{"password", password},
	})
}

// Signup posts a new account to the signup endpoint.
// Success iff the backend answers 201.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.post(ctx, SignupPath, http.StatusCreated, []field{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
	})
}

type field struct {
	name, value string
}

func (c *Client) post(ctx context.Context, path string, want int, fields []field) (err error) {
	ctx, span := c.tracer.Start(ctx, "authapi POST "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodPost),
			attribute.String("taskly.endpoint", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	body, contentType, err := encodeMultipart(fields)
	if err != nil {
		return terrors.New(terrors.CodeTransport).Wrap(err)
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return terrors.New(terrors.CodeTransport).Wrap(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("auth request failed", "endpoint", path, "error", err)
		return terrors.New(terrors.CodeTransport).Wrap(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == want {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Debug("auth request succeeded", "endpoint", path, "status", resp.StatusCode)
		return nil
	}

	c.logger.Info("auth request rejected", "endpoint", path, "status", resp.StatusCode, "want", want)
	return classify(resp)
}

// classify turns a non-success response into an error. A JSON body with a
// "message" member becomes the user-facing message.
func classify(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil && strings.TrimSpace(payload.Message) != "" {
		return terrors.New(terrors.CodeTransport).
			WithStatus(resp.StatusCode).
			WithPublic(payload.Message).
			WithDetail(fmt.Sprintf("backend answered %d", resp.StatusCode))
	}

	return terrors.New(terrors.CodeUnexpectedResponse).
		WithStatus(resp.StatusCode).
		WithDetail(fmt.Sprintf("backend answered %d", resp.StatusCode))
}

func encodeMultipart(fields []field) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
