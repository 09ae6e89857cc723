package embedded

import (
	"embed"
)

// Directive texts for prompt composition
//
//go:embed data/framing/preamble.txt
var PreambleTxt []byte

// FeatureDirectives holds one file per feature, named <feature>.txt
//
//go:embed data/features/*.txt
var FeatureDirectives embed.FS

// PatternDirectives holds one file per pattern status, named <status>.txt
//
//go:embed data/patterns/*.txt
var PatternDirectives embed.FS
