package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	terrors "github.com/taskly-dev/taskly/internal/errors"
	"github.com/taskly-dev/taskly/pkg/toast"
)

// Status is the lifecycle state of one submit attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var (
	// ErrInFlight is returned by Submit while a previous submission has not settled.
	ErrInFlight = errors.New("form: submission already in flight")

	// ErrUnknownField is returned when a field name is not part of the schema.
	ErrUnknownField = errors.New("form: unknown field")

	// ErrFieldKind is returned when a value does not fit the field's kind.
	ErrFieldKind = errors.New("form: wrong field kind")
)

// InvalidError is returned by Submit when validation fails.
type InvalidError struct {
	Errors Errors
}

func (e *InvalidError) Error() string {
	return "form: validation failed: " + strings.Join(e.Errors.Fields(), ", ")
}

// Unwrap exposes the registered validation error code.
func (e *InvalidError) Unwrap() error {
	return terrors.New(terrors.CodeValidation)
}

// Submitter sends a validated record somewhere. It is called at most once
// per submit attempt.
type Submitter[T any] interface {
	Submit(ctx context.Context, record T) error
}

// SubmitFunc adapts a function to the Submitter interface.
type SubmitFunc[T any] func(ctx context.Context, record T) error

// Submit calls f(ctx, record).
func (f SubmitFunc[T]) Submit(ctx context.Context, record T) error {
	return f(ctx, record)
}

// Messages are the notification texts a form emits.
type Messages struct {
	// Success is emitted after a successful submission.
	Success string

	// Failure is emitted when a failed submission carries no user-facing message.
	Failure string
}

type options struct {
	messages Messages
	logger   *slog.Logger
}

// Option configures a Form.
type Option func(*options)

// WithMessages sets the success and fallback failure notifications.
func WithMessages(success, failure string) Option {
	return func(o *options) {
		o.messages = Messages{Success: success, Failure: failure}
	}
}

// WithLogger sets the logger used for submission events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Form is a type-safe form controller. It owns the form state, the errors of
// the last validation pass, the submission status and the password
// visibility flag. All methods are safe for concurrent use.
type Form[T any] struct {
	schema    *Schema[T]
	submitter Submitter[T]
	messages  Messages
	logger    *slog.Logger
	initial   T

	mu           sync.Mutex
	values       T
	errors       Errors
	status       Status
	showPassword bool
	// submitted is set by the first submit attempt and cleared by Reset
	// and a successful submission. While set, edits re-validate.
	submitted bool
}

// New creates a Form over schema whose state starts as initial.
// initial is also the state restored by Reset and after a successful submit.
func New[T any](schema *Schema[T], initial T, submitter Submitter[T], opts ...Option) *Form[T] {
	o := options{
		messages: Messages{Success: "Submitted successfully", Failure: "Submission failed"},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Form[T]{
		schema:    schema,
		submitter: submitter,
		messages:  o.messages,
		logger:    o.logger,
		initial:   initial,
		values:    initial,
		errors:    make(Errors),
	}
}

// Schema returns the form's schema.
func (f *Form[T]) Schema() *Schema[T] {
	return f.schema
}

// Values returns a copy of the current form state.
func (f *Form[T]) Values() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Value returns the current value of a single field.
func (f *Form[T]) Value(name string) (any, error) {
	field, ok := f.schema.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return field.Value(&f.values), nil
}

// Set updates a text field. For a checkbox, value is parsed as a posted
// checkbox value ("on", "true", "1"). After a submit attempt the field's
// error is recomputed.
func (f *Form[T]) Set(name, value string) error {
	field, ok := f.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.mu.Lock()
	field.setText(&f.values, value)
	f.revalidate(name)
	f.mu.Unlock()
	return nil
}

// SetBool updates a checkbox field.
func (f *Form[T]) SetBool(name string, value bool) error {
	field, ok := f.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if field.Kind != KindCheckbox {
		return fmt.Errorf("%w: %q is not a checkbox", ErrFieldKind, name)
	}
	f.mu.Lock()
	*field.flag(&f.values) = value
	f.revalidate(name)
	f.mu.Unlock()
	return nil
}

// Bind copies posted form values into the state. See Schema.Bind.
// After a submit attempt every error is recomputed.
func (f *Form[T]) Bind(values url.Values) {
	f.mu.Lock()
	f.schema.Bind(&f.values, values)
	if f.submitted {
		f.errors = f.schema.Validate(f.values)
	}
	f.mu.Unlock()
}

// revalidate recomputes the error of one field, refinements included.
// It does nothing before the first submit attempt. f.mu must be held.
func (f *Form[T]) revalidate(name string) {
	if !f.submitted {
		return
	}
	if msg := f.schema.Validate(f.values).Get(name); msg != "" {
		f.errors[name] = msg
		return
	}
	delete(f.errors, name)
}

// Snapshot is a consistent copy of a form's observable state, taken under
// one lock so a render never mixes two states.
type Snapshot[T any] struct {
	Values       T
	Errors       Errors
	Status       Status
	ShowPassword bool
}

// Submitting reports whether the snapshot was taken mid-submission.
func (s Snapshot[T]) Submitting() bool {
	return s.Status == StatusSubmitting
}

// Snapshot returns the current state for rendering.
func (f *Form[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot[T]{
		Values:       f.values,
		Errors:       f.errors.clone(),
		Status:       f.status,
		ShowPassword: f.showPassword,
	}
}

// Errors returns a copy of the errors from the last validation pass.
func (f *Form[T]) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.clone()
}

// FieldError returns the message for one field, or "".
func (f *Form[T]) FieldError(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[name]
}

// Status returns the submission status.
func (f *Form[T]) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Submitting returns true while a submission is in flight.
// The submit control must be disabled while this is true.
func (f *Form[T]) Submitting() bool {
	return f.Status() == StatusSubmitting
}

// ShowPassword reports whether password inputs render their content.
func (f *Form[T]) ShowPassword() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.showPassword
}

// TogglePassword flips password visibility and returns the new value.
// It does not touch the form state or its errors.
func (f *Form[T]) TogglePassword() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showPassword = !f.showPassword
	return f.showPassword
}

// Reset restores the initial state, clears errors, hides the password and
// returns to idle. A submission in flight is not interrupted; its outcome
// still applies.
func (f *Form[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = f.initial
	f.errors = make(Errors)
	f.showPassword = false
	f.submitted = false
	if f.status != StatusSubmitting {
		f.status = StatusIdle
	}
}

// Submit validates the state and, if valid, sends it through the Submitter
// and waits for the outcome. Notifications go to notify.
//
// It returns *InvalidError when validation fails, ErrInFlight when another
// submission has not settled, and the Submitter's error otherwise.
func (f *Form[T]) Submit(ctx context.Context, notify toast.Emitter) error {
	done, err := f.SubmitAsync(ctx, notify)
	if err != nil {
		return err
	}
	return <-done
}

// SubmitAsync is Submit without the wait. Validation and the transition to
// StatusSubmitting happen before it returns; the Submitter runs on its own
// goroutine and its outcome is delivered on the returned channel.
func (f *Form[T]) SubmitAsync(ctx context.Context, notify toast.Emitter) (<-chan error, error) {
	record, err := f.begin()
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		done <- f.finish(ctx, record, notify)
	}()
	return done, nil
}

// begin validates and moves to StatusSubmitting.
func (f *Form[T]) begin() (T, error) {
	var zero T

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == StatusSubmitting {
		return zero, ErrInFlight
	}
	f.status = StatusIdle
	f.submitted = true

	f.errors = f.schema.Validate(f.values)
	if !f.errors.Empty() {
		f.logger.Debug("form validation failed", "fields", f.errors.Fields())
		return zero, &InvalidError{Errors: f.errors.clone()}
	}

	f.status = StatusSubmitting
	return f.values, nil
}

// finish runs the Submitter and applies its outcome.
func (f *Form[T]) finish(ctx context.Context, record T, notify toast.Emitter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("form: submitter panicked: %v", r)
		}
		f.settle(err)
		f.notify(notify, err)
	}()
	return f.submitter.Submit(ctx, record)
}

func (f *Form[T]) settle(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = StatusFailed
		f.logger.Debug("form submission failed", "error", err)
		return
	}
	f.status = StatusSucceeded
	f.values = f.initial
	f.errors = make(Errors)
	f.submitted = false
	f.logger.Debug("form submission succeeded")
}

func (f *Form[T]) notify(notify toast.Emitter, err error) {
	if err == nil {
		toast.Success(notify, f.messages.Success)
		return
	}
	msg := terrors.UserMessage(err)
	if msg == "" {
		msg = f.messages.Failure
	}
	toast.Error(notify, msg)
}
