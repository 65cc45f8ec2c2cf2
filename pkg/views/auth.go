package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/taskly-dev/taskly/pkg/auth"
	"github.com/taskly-dev/taskly/pkg/form"
)

// Live page names.
const (
	PageLogin  = "login"
	PageSignup = "sign-up"
)

const tagline = "Start managing your tasks efficiently"

// LoginPage renders the login document.
func LoginPage(p Page, id string, s form.Snapshot[auth.LoginFields]) g.Node {
	p.Title = "Log in"
	return Layout(p, authShell("Log in to your account", tagline, LoginForm(id, s)))
}

// LoginForm renders the login form fragment.
func LoginForm(id string, s form.Snapshot[auth.LoginFields]) g.Node {
	v := s.Values
	return formShell(PageLogin, "/login", id,
		field(input{
			name: auth.FieldEmail, label: "Email", typ: "text", placeholder: "Email",
			value: v.Email, err: s.Errors.Get(auth.FieldEmail),
		}),
		passwordField(input{
			name: auth.FieldPassword, label: "Password", placeholder: "Password",
			value: v.Password, err: s.Errors.Get(auth.FieldPassword),
		}, s.ShowPassword),
		Div(Class("form-options"),
			Label(Class("remember"),
				Input(Type("checkbox"), ID(auth.FieldRememberMe), Name(auth.FieldRememberMe),
					Data("field", auth.FieldRememberMe), g.If(v.RememberMe, Checked())),
				Span(g.Text("Remember me")),
			),
			A(Href("#"), Class("link"), g.Text("Forgot your password?")),
		),
		submitButton("Log In", s.Submitting()),
		P(Class("form-footer"),
			g.Text("Don't have an account? "),
			A(Href("/sign-up"), g.Text("Register now")),
		),
	)
}

// SignupPage renders the signup document.
func SignupPage(p Page, id string, s form.Snapshot[auth.SignupFields]) g.Node {
	p.Title = "Sign up"
	return Layout(p, authShell("Create your account", tagline, SignupForm(id, s)))
}

// SignupForm renders the signup form fragment. The confirm field stays
// obscured whatever the visibility toggle says.
func SignupForm(id string, s form.Snapshot[auth.SignupFields]) g.Node {
	v := s.Values
	return formShell(PageSignup, "/sign-up", id,
		Div(Class("field-row"),
			field(input{
				name: auth.FieldFirstName, label: "First Name", typ: "text", placeholder: "First Name",
				value: v.FirstName, err: s.Errors.Get(auth.FieldFirstName),
			}),
			field(input{
				name: auth.FieldLastName, label: "Last Name", typ: "text", placeholder: "Last Name",
				value: v.LastName, err: s.Errors.Get(auth.FieldLastName),
			}),
		),
		field(input{
			name: auth.FieldEmail, label: "Email", typ: "text", placeholder: "Email",
			value: v.Email, err: s.Errors.Get(auth.FieldEmail),
		}),
		passwordField(input{
			name: auth.FieldPassword, label: "Password", placeholder: "Password",
			value: v.Password, err: s.Errors.Get(auth.FieldPassword),
		}, s.ShowPassword),
		field(input{
			name: auth.FieldConfirmPassword, label: "Confirm Password", typ: "password", placeholder: "Confirm Password",
			value: v.ConfirmPassword, err: s.Errors.Get(auth.FieldConfirmPassword),
		}),
		submitButton("Sign Up", s.Submitting()),
		P(Class("form-footer"),
			g.Text("Already have an account? "),
			A(Href("/login"), g.Text("Log in")),
		),
	)
}
