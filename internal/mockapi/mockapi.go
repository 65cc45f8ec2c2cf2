// Package mockapi is an in-memory stand-in for the auth backend, used for
// local development and tests.
//
// It serves the two endpoints the web app calls:
//
//	POST /api/users/signup/  multipart firstName, lastName, email, password → 201
//	POST /api/auth/login/    multipart email, password                      → 200
//
// Failures answer with a JSON body carrying a message, which the app shows
// to the user.
package mockapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Paths served by the mock backend.
const (
	SignupPath = "/api/users/signup/"
	LoginPath  = "/api/auth/login/"
)

// Messages returned in failure bodies.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgEmailTaken         = "A user with this email already exists"
	MsgMissingFields      = "All fields are required"
	MsgBadForm            = "Malformed form data"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
)

const maxFormMemory = 1 << 20

// Config configures the mock backend.
type Config struct {
	// Delay is added before every response.
	Delay time.Duration

	// Cost is the bcrypt cost. Default: bcrypt.DefaultCost.
	Cost int

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger
}

// User is a registered account.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`

	hash []byte
}

// Server is the mock backend. It is safe for concurrent use.
type Server struct {
	config Config
	logger *slog.Logger
	router chi.Router

	mu    sync.RWMutex
	users map[string]*User // by normalized email
}

// New creates a Server with no users.
func New(config Config) *Server {
	if config.Cost == 0 {
		config.Cost = bcrypt.DefaultCost
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		config: config,
		logger: config.Logger.With("component", "mockapi"),
		users:  make(map[string]*User),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.delay)
	r.Post(SignupPath, s.handleSignup)
	r.Post(LoginPath, s.handleLogin)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Len returns the number of registered users.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Register adds a user directly, as a signup would.
func (s *Server) Register(firstName, lastName, email, password string) (*User, error) {
	if len(password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Cost)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return nil, errEmailTaken
	}
	u := &User{
		ID:        uuid.NewString(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		hash:      hash,
	}
	s.users[key] = u
	return u, nil
}

// Authenticate returns the user matching email and password.
func (s *Server) Authenticate(email, password string) (*User, bool) {
	s.mu.RLock()
	u, ok := s.users[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return nil, false
	}
	return u, true
}

// maxPasswordBytes is the longest input bcrypt hashes.
const maxPasswordBytes = 72

var (
	errEmailTaken      = errors.New("mockapi: email taken")
	errPasswordTooLong = errors.New("mockapi: password longer than 72 bytes")
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	first := r.PostFormValue("firstName")
	last := r.PostFormValue("lastName")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if first == "" || last == "" || email == "" || password == "" {
		writeMessage(w, http.StatusBadRequest, MsgMissingFields)
		return
	}

	u, err := s.Register(first, last, email, password)
	switch {
	case errors.Is(err, errEmailTaken):
		writeMessage(w, http.StatusConflict, MsgEmailTaken)
		return
	case errors.Is(err, errPasswordTooLong):
		writeMessage(w, http.StatusBadRequest, MsgPasswordTooLong)
		return
	case err != nil:
		s.logger.Error("hash password", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.logger.Info("user signed up", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	u, ok := s.Authenticate(r.PostFormValue("email"), r.PostFormValue("password"))
	if !ok {
		writeMessage(w, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	writeJSON(w, http.StatusOK, u)
}

// delay holds every response for the configured delay, or until the
// client goes away.
func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Delay > 0 {
			t := time.NewTimer(s.config.Delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// parseForm accepts multipart and urlencoded bodies.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeMessage(w, http.StatusBadRequest, MsgBadForm)
		return false
	}
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
