// Package resources embeds the static documents of the game: map
// definitions and the global wave table.
package resources

import (
	"embed"
	"io/fs"
)

//go:embed maps/*.yaml waves.yaml
var files embed.FS

// WavesID is the resource id of the wave table.
const WavesID = "waves"

// MapsDir is the directory holding one document per map.
const MapsDir = "maps"

// FS returns the embedded resource pack.
func FS() fs.FS {
	return files
}
