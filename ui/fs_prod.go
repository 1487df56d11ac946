//go:build !debug

package ui

import "embed"

//go:embed templates static
var assets embed.FS

// Assets returns the embedded templates and static files (production: baked into binary).
func Assets() embed.FS {
	return assets
}
