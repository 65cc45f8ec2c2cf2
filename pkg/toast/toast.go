package toast

import "sync"

// EventName is the event name dispatched for toasts.
// Client-side code should listen for this event.
const EventName = "taskly:toast"

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Emitter receives named events. Anything that can deliver an event to the
// browser (a render queue, a live connection) implements it.
type Emitter interface {
	Emit(name string, data any)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(name string, data any)

// Emit calls f(name, data).
func (f EmitterFunc) Emit(name string, data any) {
	f(name, data)
}

// Discard is an Emitter that drops every event.
var Discard Emitter = EmitterFunc(func(string, any) {})

// Toast is a single notification.
type Toast struct {
	Level   Type
	Message string
}

// Show displays a toast notification to the user.
//
// The emitted data is a map with:
//   - "level": "success|error|warning|info"
//   - "message": the text to show
func Show(e Emitter, level Type, message string) {
	if e == nil {
		return
	}
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// Success shows a success toast.
//
//	toast.Success(q, "Login successful!")
func Success(e Emitter, message string) {
	Show(e, TypeSuccess, message)
}

// Error shows an error toast.
//
//	toast.Error(q, "Login failed!")
func Error(e Emitter, message string) {
	Show(e, TypeError, message)
}

// Warning shows a warning toast.
func Warning(e Emitter, message string) {
	Show(e, TypeWarning, message)
}

// Info shows an info toast.
func Info(e Emitter, message string) {
	Show(e, TypeInfo, message)
}

// FromEvent decodes the data of a toast event. It reports false for events
// that are not toasts.
func FromEvent(name string, data any) (Toast, bool) {
	if name != EventName {
		return Toast{}, false
	}
	m, ok := data.(map[string]any)
	if !ok {
		return Toast{}, false
	}
	level, _ := m["level"].(string)
	message, _ := m["message"].(string)
	return Toast{Level: Type(level), Message: message}, true
}

// Queue collects toasts until they are drained into a render.
// It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	toasts []Toast
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Emit implements Emitter. Non-toast events are ignored.
func (q *Queue) Emit(name string, data any) {
	t, ok := FromEvent(name, data)
	if !ok {
		return
	}
	q.mu.Lock()
	q.toasts = append(q.toasts, t)
	q.mu.Unlock()
}

// Len returns the number of queued toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}

// Drain returns the queued toasts in emission order and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.toasts
	q.toasts = nil
	return out
}
