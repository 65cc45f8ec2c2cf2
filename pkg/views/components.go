package views

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Action values posted in the _action field.
const (
	ActionSubmit         = "submit"
	ActionTogglePassword = "toggle-password"
)

// Hidden field names.
const (
	InstanceField = "_instance"
	ActionField   = "_action"
)

// input describes one labelled input.
type input struct {
	name        string
	label       string
	typ         string
	placeholder string
	value       string
	err         string
}

// formShell renders the form fragment. page names the live page and id the
// server-side instance the form belongs to.
func formShell(page, action, id string, children ...g.Node) g.Node {
	return Form(ID(FormID), Method("post"), Action(action), g.Attr("novalidate"),
		Data("live-page", page), Data("instance", id),
		Input(Type("hidden"), Name(InstanceField), Value(id)),
		g.Group(children),
	)
}

func field(in input) g.Node {
	return Div(Class("field"),
		Label(For(in.name), Class("field-label"), g.Text(in.label)),
		inputEl(in),
		fieldError(in.name, in.err),
	)
}

func inputEl(in input, extra ...g.Node) g.Node {
	return Input(ID(in.name), Name(in.name), Type(in.typ),
		Placeholder(in.placeholder), Value(in.value),
		Aria("invalid", strconv.FormatBool(in.err != "")),
		g.If(in.err != "", Aria("describedby", in.name+"-error")),
		Data("field", in.name),
		g.Group(extra),
	)
}

// passwordField renders a password input with the visibility toggle.
// Without scripting the toggle posts the form with the toggle action.
func passwordField(in input, show bool) g.Node {
	in.typ = "password"
	toggleLabel := "Show password"
	icon := "eye"
	if show {
		in.typ = "text"
		toggleLabel = "Hide password"
		icon = "eye-off"
	}

	return Div(Class("field"),
		Label(For(in.name), Class("field-label"), g.Text(in.label)),
		Div(Class("password-input"),
			inputEl(in),
			Button(Type("submit"), Name(ActionField), Value(ActionTogglePassword),
				g.Attr("formnovalidate"), Class("password-toggle"),
				Data("action", "toggle"), Aria("label", toggleLabel),
				Span(Class("icon icon-"+icon), Aria("hidden", "true")),
			),
		),
		fieldError(in.name, in.err),
	)
}

func fieldError(name, msg string) g.Node {
	if msg == "" {
		return nil
	}
	return P(ID(name+"-error"), Class("field-error"), g.Text(msg))
}

// submitButton is disabled and shows a spinner while submitting.
func submitButton(label string, submitting bool) g.Node {
	return Button(Type("submit"), Name(ActionField), Value(ActionSubmit), Class("submit"),
		g.If(submitting, Disabled()),
		Aria("busy", strconv.FormatBool(submitting)),
		g.If(submitting, spinner()),
		g.If(!submitting, g.Text(label)),
	)
}

func spinner() g.Node {
	return g.El("svg", Class("spinner"),
		g.Attr("xmlns", "http://www.w3.org/2000/svg"),
		g.Attr("fill", "none"),
		g.Attr("viewBox", "0 0 24 24"),
		Aria("hidden", "true"),
		g.El("circle", g.Attr("opacity", "0.25"), g.Attr("cx", "12"), g.Attr("cy", "12"), g.Attr("r", "10"),
			g.Attr("stroke", "currentColor"), g.Attr("stroke-width", "4")),
		g.El("path", g.Attr("opacity", "0.75"), g.Attr("fill", "currentColor"),
			g.Attr("d", "M4 12a8 8 0 018-8V0C5.373 0 0 5.373 0 12h4zm2 5.291A7.962 7.962 0 014 12H0c0 3.042 1.135 5.824 3 7.938l3-2.647z")),
	)
}

// authShell is the centered card used by the login and signup pages.
func authShell(heading, tagline string, content g.Node) g.Node {
	return Main(Class("auth"),
		Div(Class("auth-card"),
			Div(Class("auth-head"),
				H2(g.Text(heading)),
				P(g.Text(tagline)),
			),
			content,
		),
	)
}
