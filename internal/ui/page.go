package ui

import "strings"

// StaticPage renders the standalone welcome page.
func StaticPage() string {
	return strings.Join([]string{
		TitleStyle.Render("Welcome to My Page"),
		"",
		"This is a custom page.",
	}, "\n")
}
