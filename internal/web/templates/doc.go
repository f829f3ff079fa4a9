// Package templates renders the financial summary as templ components.
// Edit the .templ sources and run templ generate; *_templ.go is generated.
package templates
