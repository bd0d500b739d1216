package configs

import "embed"

// FS holds the files the installer seeds into the runtime directory.
//
//go:embed IDENTITY.md
var FS embed.FS

// DefaultIdentity is the persona used when the runtime IDENTITY.md is
// missing or empty.
func DefaultIdentity() string {
	data, err := FS.ReadFile("IDENTITY.md")
	if err != nil {
		return ""
	}
	return string(data)
}
