package config

import _ "embed"

// Schema is the CUE schema every configuration document is validated
// against. Documents are unified with its #Registry definition.
//
//go:embed cue/schema.cue
var Schema []byte

// DefaultDocument is the embedded reference configuration loaded by Default.
//
//go:embed cue/default.cue
var DefaultDocument []byte
