// Package templates holds the starter files written by `dockdeck init`.
package templates

import (
	_ "embed"
)

var (
	// ConfigYAML is the commented config.yaml covering every dockdeck key.
	//go:embed config.template
	ConfigYAML []byte

	// EnvFile lists the DOCKDECK_ environment overrides.
	//go:embed env.template
	EnvFile []byte
)

// File is a starter file and the name it is written under.
type File struct {
	Name    string
	Content []byte
}

// Files returns the starter files in the order init writes them.
func Files() []File {
	return []File{
		{Name: "config.yaml", Content: ConfigYAML},
		{Name: ".env", Content: EnvFile},
	}
}
