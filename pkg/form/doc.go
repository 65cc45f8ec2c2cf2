// Package form provides type-safe form handling with validation for taskly pages.
//
// # Overview
//
// A Schema[T] describes the fields of a record type T: each field is bound
// to T through a typed accessor at construction time, so binding never goes
// through reflection or string lookups into T. A Form[T] owns one live
// instance of T (the form state), the validation errors of the last submit,
// the submission status and the password-visibility flag.
//
// # Basic Usage
//
//	type LoginFields struct {
//	    Email      string
//	    Password   string
//	    RememberMe bool
//	}
//
//	schema := form.NewSchema(
//	    form.Text("email", func(f *LoginFields) *string { return &f.Email },
//	        form.Required("Email is required"),
//	        form.Email("Must be a valid email address"),
//	    ),
//	    form.Password("password", func(f *LoginFields) *string { return &f.Password },
//	        form.MinLength(4, "Password must be at least 4 characters"),
//	    ),
//	    form.Checkbox("rememberMe", func(f *LoginFields) *bool { return &f.RememberMe }),
//	)
//
//	f := form.New(schema, LoginFields{}, submitter,
//	    form.WithMessages("Login successful!", "Login failed!"))
//
//	f.Bind(r.PostForm)
//	err := f.Submit(ctx, queue)
//
// # Validation
//
// Validation runs only when Submit is called. For each field the validators
// run in order and the first failure becomes the field's message. Schema
// refinements (Schema.Refine) add cross-field checks whose message is attached
// to one named field.
//
// The package includes validators for the patterns the pages need:
//
//   - Required: non-empty value
//   - MinLength/MaxLength: string length constraints, counted in runes
//   - Email: local@domain.tld
//   - Pattern: regular expression matching
//   - Custom: user-defined validation logic
//
// # Submission
//
// Submit validates, then calls the Submitter exactly once. While the call is
// in flight the form reports StatusSubmitting and refuses further submits
// with ErrInFlight. On success the state is reset to the initial record and a
// success toast is emitted; on failure the state is kept and an error toast
// carries the error's user-facing message.
package form
