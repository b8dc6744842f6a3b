// Package web provides embedded static assets for page image blocks.
// Image blocks reference these files by their /static/ path; the API
// exposes the available paths so editors can pick one.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
