//go:build debug

package ui

import (
	"io/fs"
	"os"
)

// Assets returns a live filesystem rooted at ui/ (debug: reads from disk).
// Template and CSS edits show up on the next request without recompiling Go.
func Assets() fs.FS {
	return os.DirFS("ui")
}
