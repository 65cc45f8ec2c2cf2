package views

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Todo is one entry of the todo list.
type Todo struct {
	ID        int
	Text      string
	Completed bool
}

// PlaceholderTodos is the static list shown on the todos page.
var PlaceholderTodos = []Todo{
	{ID: 1, Text: "Complete project documentation"},
	{ID: 2, Text: "Review pull requests", Completed: true},
	{ID: 3, Text: "Update dependencies"},
}

type navItem struct {
	href, label string
}

var navItems = []navItem{
	{"/todos", "Dashboard"},
	{"/todos", "Todos"},
	{"/profile", "Account Information"},
}

func sidebar(active string) g.Node {
	return Aside(Class("sidebar"),
		H1(g.Text("Todo App")),
		Nav(
			g.Map(navItems, func(item navItem) g.Node {
				return A(Href(item.href), g.If(item.label == active, Class("active")), g.Text(item.label))
			}),
		),
		A(Href("/logout"), Class("logout"), g.Text("Logout")),
	)
}

// TodosPage renders the todo list. Nothing on it is wired: adding,
// editing and deleting todos is not supported.
func TodosPage(p Page, todos []Todo) g.Node {
	p.Title = "My Todos"
	return Layout(p,
		Div(Class("app"),
			sidebar("Dashboard"),
			Main(Class("content"),
				H2(g.Text("My Todos")),
				Div(Class("todo-new"),
					Input(Type("text"), Name("todo"), Placeholder("Add a new todo...")),
					Button(Type("button"), g.Text("Add Todo")),
				),
				Div(Class("todo-list"),
					g.Map(todos, todoItem),
				),
			),
		),
	)
}

func todoItem(t Todo) g.Node {
	textClass := "todo-text"
	if t.Completed {
		textClass += " todo-done"
	}
	return Div(Class("todo"), Data("todo-id", strconv.Itoa(t.ID)),
		Input(Type("checkbox"), g.If(t.Completed, Checked()), Disabled()),
		Span(Class(textClass), g.Text(t.Text)),
		Button(Type("button"), Class("todo-edit"), g.Text("Edit")),
		Button(Type("button"), Class("todo-delete"), g.Text("Delete")),
	)
}

// Profile is the account shown on the profile page.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// PlaceholderProfile is the static account on the profile page.
var PlaceholderProfile = Profile{FirstName: "John", LastName: "Doe", Email: "john@email.com"}

// ProfilePage renders the account information page. The fields are
// placeholders and Save Changes is not wired.
func ProfilePage(p Page, profile Profile) g.Node {
	p.Title = "Account Information"
	fullName := profile.FirstName + " " + profile.LastName

	return Layout(p,
		Div(Class("app"),
			Aside(Class("sidebar"),
				Div(Class("profile-card"),
					H2(g.Text(fullName)),
					P(g.Text(profile.Email)),
				),
				Nav(
					A(Href("/todos"), g.Text("Todos")),
					A(Href("/profile"), Class("active"), g.Text("Account Information")),
				),
				A(Href("/logout"), Class("logout"), g.Text("Logout")),
			),
			Main(Class("content"),
				H2(g.Text("Account Information")),
				Button(Type("button"), Class("upload"), g.Text("+ Upload New Photo")),
				Div(Class("field-row"),
					profileField("First Name", "text", profile.FirstName, ""),
					profileField("Last Name", "text", profile.LastName, ""),
				),
				profileField("Email", "email", profile.Email, ""),
				Div(Class("field-row"),
					profileField("Address", "text", "", "Enter address"),
					profileField("Contact Number", "tel", "", "Enter phone number"),
				),
				profileField("Birthday", "date", "", ""),
				Div(Class("actions"),
					Button(Type("button"), Class("submit"), g.Text("Save Changes")),
					Button(Type("button"), g.Text("Cancel")),
				),
			),
		),
	)
}

func profileField(label, typ, value, placeholder string) g.Node {
	return Div(Class("field"),
		Label(Class("field-label"), g.Text(label)),
		Input(Type(typ), g.If(value != "", Value(value)), g.If(placeholder != "", Placeholder(placeholder))),
	)
}
