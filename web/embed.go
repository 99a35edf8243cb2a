package web

import "embed"

// TemplatesFS embeds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the HTMX glue script.
//
//go:embed static/*
var StaticFS embed.FS
