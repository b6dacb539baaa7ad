// Package web carries the embedded UI assets: the html/template files
// for the page shell and the htmx partials, plus static css.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
