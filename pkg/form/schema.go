package form

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Kind is the input kind a field renders as.
type Kind int

const (
	KindText Kind = iota
	KindPassword
	KindCheckbox
)

// Field binds one named input to a field of T.
type Field[T any] struct {
	// Name is the input name and the key used in Errors.
	Name string

	// Kind selects how the field is bound and rendered.
	Kind Kind

	text       func(*T) *string
	flag       func(*T) *bool
	validators []Validator
}

// Text declares a text field bound through ptr.
func Text[T any](name string, ptr func(*T) *string, validators ...Validator) Field[T] {
	return Field[T]{Name: name, Kind: KindText, text: ptr, validators: validators}
}

// Password declares a password field bound through ptr.
func Password[T any](name string, ptr func(*T) *string, validators ...Validator) Field[T] {
	return Field[T]{Name: name, Kind: KindPassword, text: ptr, validators: validators}
}

// Checkbox declares an optional boolean field bound through ptr.
func Checkbox[T any](name string, ptr func(*T) *bool, validators ...Validator) Field[T] {
	return Field[T]{Name: name, Kind: KindCheckbox, flag: ptr, validators: validators}
}

// Value returns the field's current value in v: a string, or a bool for checkboxes.
func (f Field[T]) Value(v *T) any {
	if f.Kind == KindCheckbox {
		return *f.flag(v)
	}
	return *f.text(v)
}

func (f Field[T]) setText(v *T, s string) {
	if f.Kind == KindCheckbox {
		*f.flag(v) = parseCheckbox(s)
		return
	}
	*f.text(v) = s
}

// validate returns the message of the first failing validator, or "".
func (f Field[T]) validate(v *T) string {
	value := f.Value(v)
	for _, validator := range f.validators {
		if err := validator.Validate(value); err != nil {
			return err.Error()
		}
	}
	return ""
}

// parseCheckbox interprets a posted checkbox value. Browsers send "on" for
// a checked box without a value attribute and omit unchecked boxes.
func parseCheckbox(s string) bool {
	if s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// Errors maps field names to their validation message.
// An empty Errors means the form is valid.
type Errors map[string]string

// Has returns true if the field has a message.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the field's message, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Empty returns true if there are no messages.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Fields returns the names of the fields with messages, sorted.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// refinement is a cross-field check whose message is attached to field.
type refinement[T any] struct {
	field   string
	message string
	ok      func(T) bool
}

// Schema is the ordered set of fields of a form over T plus its cross-field
// refinements. It is immutable once built and safe for concurrent use.
type Schema[T any] struct {
	fields      []Field[T]
	index       map[string]int
	refinements []refinement[T]
}

// NewSchema builds a schema from fields. It panics on duplicate or empty
// field names, which are programming errors.
func NewSchema[T any](fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			panic("form: field with empty name")
		}
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("form: duplicate field %q", f.Name))
		}
		if f.text == nil && f.flag == nil {
			panic(fmt.Sprintf("form: field %q has no accessor", f.Name))
		}
		s.index[f.Name] = i
	}
	return s
}

// Refine adds a cross-field check. When ok returns false the message is
// attached to field, unless that field already failed its own validators.
func (s *Schema[T]) Refine(field, message string, ok func(T) bool) *Schema[T] {
	if _, exists := s.index[field]; !exists {
		panic(fmt.Sprintf("form: refinement on unknown field %q", field))
	}
	s.refinements = append(s.refinements, refinement[T]{field: field, message: message, ok: ok})
	return s
}

// Fields returns the schema's fields in declaration order.
func (s *Schema[T]) Fields() []Field[T] {
	return s.fields
}

// Field returns the named field.
func (s *Schema[T]) Field(name string) (Field[T], bool) {
	i, ok := s.index[name]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

// Validate runs every field's validators and then the refinements against v.
// It has no side effects.
func (s *Schema[T]) Validate(v T) Errors {
	errs := make(Errors)
	for _, f := range s.fields {
		if msg := f.validate(&v); msg != "" {
			errs[f.Name] = msg
		}
	}
	for _, r := range s.refinements {
		if errs.Has(r.field) {
			continue
		}
		if !r.ok(v) {
			errs[r.field] = r.message
		}
	}
	return errs
}

// Bind copies posted values into v. Text fields absent from values keep
// their current value; checkboxes absent from values become false, since
// browsers do not post unchecked boxes.
func (s *Schema[T]) Bind(v *T, values url.Values) {
	for _, f := range s.fields {
		raw, present := values[f.Name]
		switch {
		case f.Kind == KindCheckbox && !present:
			*f.flag(v) = false
		case !present || len(raw) == 0:
			continue
		default:
			f.setText(v, raw[0])
		}
	}
}
