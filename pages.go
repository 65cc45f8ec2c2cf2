package taskly

import (
	"context"
	"errors"
	"io"

	g "maragu.dev/gomponents"

	"github.com/taskly-dev/taskly/pkg/form"
	"github.com/taskly-dev/taskly/pkg/middleware"
	"github.com/taskly-dev/taskly/pkg/toast"
)

// formPage is one server-side form instance. It serves both the plain POST
// path and the live channel.
type formPage[T any] struct {
	id      string
	name    string
	form    *form.Form[T]
	render  func(id string, s form.Snapshot[T]) g.Node
	metrics *middleware.Metrics
}

// Input sets a field and reports whether its error changed.
func (p *formPage[T]) Input(field, value string) (bool, error) {
	before := p.form.FieldError(field)
	if err := p.form.Set(field, value); err != nil {
		return false, err
	}
	return p.form.FieldError(field) != before, nil
}

func (p *formPage[T]) Check(field string, checked bool) (bool, error) {
	before := p.form.FieldError(field)
	if err := p.form.SetBool(field, checked); err != nil {
		return false, err
	}
	return p.form.FieldError(field) != before, nil
}

func (p *formPage[T]) TogglePassword() {
	p.form.TogglePassword()
}

// Submit starts a submission and counts refused attempts. Adapter outcomes
// are counted by meteredSubmitter.
func (p *formPage[T]) Submit(ctx context.Context, notify toast.Emitter) (<-chan error, error) {
	done, err := p.form.SubmitAsync(ctx, notify)
	if err != nil {
		var invalid *form.InvalidError
		switch {
		case errors.As(err, &invalid):
			p.metrics.RecordSubmission(p.name, middleware.OutcomeInvalid)
		case errors.Is(err, form.ErrInFlight):
			p.metrics.RecordSubmission(p.name, middleware.OutcomeInFlight)
		}
		return nil, err
	}
	return done, nil
}

// Render writes the form fragment.
func (p *formPage[T]) Render(w io.Writer) error {
	return p.render(p.id, p.form.Snapshot()).Render(w)
}

// meteredSubmitter counts adapter outcomes by form.
type meteredSubmitter[T any] struct {
	name    string
	next    form.Submitter[T]
	metrics *middleware.Metrics
}

func (s meteredSubmitter[T]) Submit(ctx context.Context, record T) error {
	err := s.next.Submit(ctx, record)
	if err != nil {
		s.metrics.RecordSubmission(s.name, middleware.OutcomeFailed)
	} else {
		s.metrics.RecordSubmission(s.name, middleware.OutcomeSucceeded)
	}
	return err
}
