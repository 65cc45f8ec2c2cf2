package taskly

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	g "maragu.dev/gomponents"

	"github.com/taskly-dev/taskly/pkg/form"
	"github.com/taskly-dev/taskly/pkg/instance"
	"github.com/taskly-dev/taskly/pkg/live"
	"github.com/taskly-dev/taskly/pkg/middleware"
	"github.com/taskly-dev/taskly/pkg/toast"
	"github.com/taskly-dev/taskly/pkg/views"
)

// Notices shown on the plain POST path.
const (
	MsgFormRestored   = "Your form had expired and was restored from what you sent."
	MsgSubmitInFlight = "A submission is already in progress."
)

// formRoute serves one form page: GET starts an instance, POST acts on it.
type formRoute[T any] struct {
	name     string
	pages    *instance.Manager[*formPage[T]]
	newForm  func() *form.Form[T]
	fragment func(id string, s form.Snapshot[T]) g.Node
	document func(p views.Page, id string, s form.Snapshot[T]) g.Node
	metrics  *middleware.Metrics
	logger   *slog.Logger
}

func (rt *formRoute[T]) create() (*formPage[T], error) {
	p := &formPage[T]{
		name:    rt.name,
		form:    rt.newForm(),
		render:  rt.fragment,
		metrics: rt.metrics,
	}
	id, err := rt.pages.Create(p)
	if err != nil {
		return nil, err
	}
	p.id = id
	return p, nil
}

// resolve finds the instance a live connection attaches to.
func (rt *formRoute[T]) resolve(id string) (live.Page, error) {
	p, err := rt.pages.Get(id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (rt *formRoute[T]) release(id string) {
	rt.pages.Remove(id)
	rt.logger.Debug("form instance released", "form", rt.name, "instance_id", id)
}

func (rt *formRoute[T]) get(w http.ResponseWriter, r *http.Request) {
	p, err := rt.create()
	if err != nil {
		rt.logger.Error("create form instance", "form", rt.name, "error", err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	rt.write(w, http.StatusOK, p, nil)
}

// post binds the posted values into the named instance, or a fresh one
// when it is missing or expired, then toggles or submits.
func (rt *formRoute[T]) post(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	queue := toast.NewQueue()
	id := r.PostFormValue(views.InstanceField)
	p, err := rt.pages.Get(id)
	if err != nil {
		rt.logger.Debug("form instance not found", "form", rt.name, "instance_id", id, "error", err)
		if p, err = rt.create(); err != nil {
			rt.logger.Error("create form instance", "form", rt.name, "error", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		toast.Info(queue, MsgFormRestored)
	}
	p.form.Bind(r.PostForm)

	status := http.StatusOK
	switch r.PostFormValue(views.ActionField) {
	case views.ActionTogglePassword:
		p.TogglePassword()
	default:
		done, err := p.Submit(context.WithoutCancel(r.Context()), queue)
		var invalid *form.InvalidError
		switch {
		case errors.As(err, &invalid):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, form.ErrInFlight):
			toast.Warning(queue, MsgSubmitInFlight)
		case err == nil:
			<-done
		}
	}
	rt.write(w, status, p, queue.Drain())
}

func (rt *formRoute[T]) write(w http.ResponseWriter, status int, p *formPage[T], toasts []toast.Toast) {
	page := views.Page{Toasts: toasts, Scripts: []string{live.ScriptPath}}
	writeHTML(w, rt.logger, status, rt.document(page, p.id, p.form.Snapshot()))
}

// writeHTML renders n fully before writing, so a render failure can still
// answer 500.
func writeHTML(w http.ResponseWriter, logger *slog.Logger, status int, n g.Node) {
	var buf bytes.Buffer
	if err := views.Render(&buf, n); err != nil {
		logger.Error("render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
