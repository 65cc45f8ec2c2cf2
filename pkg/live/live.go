// Package live drives server-side page instances over a WebSocket.
//
// The browser sends small JSON events (input, check, sync, toggle, submit)
// and the server answers with render frames carrying the re-rendered form
// fragment and toast frames carrying notifications. Events of one connection
// are handled in order. On connect the browser first replays the values
// already in its inputs and then sends sync, so the first render never
// discards what the user typed before the channel opened. Pages keep working
// without the live channel: the embedded script only upgrades a plain HTML
// form.
package live

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taskly-dev/taskly/pkg/toast"
)

// Paths the live channel is mounted on.
const (
	Path       = "/_taskly/live"
	ScriptPath = "/_taskly/live.js"
)

// Event types sent by the browser.
const (
	EventInput  = "input"
	EventCheck  = "check"
	EventSync   = "sync"
	EventToggle = "toggle"
	EventSubmit = "submit"
)

// Frame types sent by the server.
const (
	FrameRender = "render"
	FrameToast  = "toast"
)

//go:embed live.js
var script []byte

// Page is one server-side page instance.
type Page interface {
	// Input sets a text field. It reports whether anything beyond the
	// field's value changed, in which case the form is re-rendered.
	Input(field, value string) (bool, error)

	// Check sets a checkbox field. It reports like Input.
	Check(field string, checked bool) (bool, error)

	// TogglePassword flips password visibility.
	TogglePassword()

	// Submit starts a submission. It returns once the page is in its
	// submitting state; the outcome arrives on the channel.
	Submit(ctx context.Context, notify toast.Emitter) (<-chan error, error)

	// Render writes the page's form fragment.
	Render(w io.Writer) error
}

// Resolver returns the page instance a connection attaches to.
type Resolver func(page, instance string) (Page, error)

// Event is a browser-to-server message.
type Event struct {
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// Frame is a server-to-browser message.
type Frame struct {
	Type    string `json:"type"`
	HTML    string `json:"html,omitempty"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

// Config configures the live handler.
type Config struct {
	// ReadTimeout closes a connection that sends nothing, pongs included.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is how often the server pings. Must be below ReadTimeout.
	// Default: 25 seconds.
	PingInterval time.Duration

	// MaxMessageSize bounds an incoming message.
	// Default: 64 KiB.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header of the upgrade request.
	// Default: same host only.
	CheckOrigin func(r *http.Request) bool

	// Track is called when a connection opens. The function it returns is
	// called when that connection closes.
	Track func() (closed func())

	// Release is called with the page name and instance id after a
	// connection closes.
	Release func(page, instance string)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		PingInterval:   25 * time.Second,
		MaxMessageSize: 64 << 10,
	}
}

// Handler upgrades requests and serves live connections.
type Handler struct {
	resolve  Resolver
	config   Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler. Zero fields of config take their defaults.
func NewHandler(resolve Resolver, config Config, logger *slog.Logger) *Handler {
	defaults := DefaultConfig()
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.PingInterval <= 0 || config.PingInterval >= config.ReadTimeout {
		config.PingInterval = config.ReadTimeout * 9 / 20
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		resolve: resolve,
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger.With("component", "live"),
	}
}

// ServeHTTP attaches a connection to the page named by the page and
// instance query parameters.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pageName := r.URL.Query().Get("page")
	instanceID := r.URL.Query().Get("instance")

	page, err := h.resolve(pageName, instanceID)
	if err != nil {
		h.logger.Debug("live page not found", "page", pageName, "instance_id", instanceID, "error", err)
		http.Error(w, "page instance not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &conn{
		ws:     ws,
		page:   page,
		config: h.config,
		logger: h.logger.With("page", pageName, "instance_id", instanceID),
		done:   make(chan struct{}),
		// Submissions outlive the upgrade request.
		ctx: context.WithoutCancel(r.Context()),
	}
	c.logger.Debug("live connection opened")
	if h.config.Track != nil {
		defer h.config.Track()()
	}
	if h.config.Release != nil {
		defer h.config.Release(pageName, instanceID)
	}

	go c.pingLoop()
	c.readLoop()
}

// ScriptHandler serves the browser side of the live channel.
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(script)
	})
}

// conn is one live connection. Writes are serialized by mu.
type conn struct {
	ws     *websocket.Conn
	page   Page
	config Config
	logger *slog.Logger
	ctx    context.Context

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (c *conn) readLoop() {
	defer c.close()

	c.ws.SetReadLimit(c.config.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.logger.Warn("event decode error", "error", err)
			continue
		}
		if err := c.handle(ev); err != nil {
			return
		}
	}
}

// handle applies one event. A returned error means the connection is gone.
func (c *conn) handle(ev Event) error {
	switch ev.Type {
	case EventInput:
		changed, err := c.page.Input(ev.Field, ev.Value)
		if err != nil {
			c.logger.Warn("input rejected", "field", ev.Field, "error", err)
			return nil
		}
		if changed {
			return c.render()
		}
		return nil

	case EventCheck:
		changed, err := c.page.Check(ev.Field, ev.Checked)
		if err != nil {
			c.logger.Warn("check rejected", "field", ev.Field, "error", err)
			return nil
		}
		if changed {
			return c.render()
		}
		return nil

	case EventSync:
		return c.render()

	case EventToggle:
		c.page.TogglePassword()
		return c.render()

	case EventSubmit:
		done, err := c.page.Submit(c.ctx, c)
		if err != nil {
			// Validation failures and refused submits re-render in place.
			c.logger.Debug("submit not started", "error", err)
			return c.render()
		}
		if err := c.render(); err != nil {
			return err
		}
		go c.awaitSubmission(done)
		return nil

	default:
		c.logger.Warn("unknown event type", "type", ev.Type)
		return nil
	}
}

func (c *conn) awaitSubmission(done <-chan error) {
	select {
	case err := <-done:
		if err != nil {
			c.logger.Debug("submission failed", "error", err)
		}
		_ = c.render()
	case <-c.done:
	}
}

func (c *conn) render() error {
	var b strings.Builder
	if err := c.page.Render(&b); err != nil {
		c.logger.Error("render failed", "error", err)
		return nil
	}
	return c.write(Frame{Type: FrameRender, HTML: b.String()})
}

// Emit implements toast.Emitter. Non-toast events are dropped.
func (c *conn) Emit(name string, data any) {
	t, ok := toast.FromEvent(name, data)
	if !ok {
		return
	}
	_ = c.write(Frame{Type: FrameToast, Level: string(t.Level), Message: t.Message})
}

var errClosed = errors.New("live: connection closed")

func (c *conn) write(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.ws.WriteJSON(f); err != nil {
		c.logger.Debug("write failed", "frame", f.Type, "error", err)
		return err
	}
	return nil
}

func (c *conn) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.config.WriteTimeout))
			c.mu.Unlock()
			if err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.ws.Close()
	c.logger.Debug("live connection closed")
}
