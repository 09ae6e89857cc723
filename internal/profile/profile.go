// Package profile defines the response profiles a transform endpoint can serve.
//
// A profile decides which keys the model must return, how those keys are checked and how
// the checked result is shaped for the caller. All three profiles share one handler.
package profile

import (
	"fmt"
	"strings"

	"github.com/ipcctiled/transform-api/internal/models"
)

// Name identifies a response profile
type Name string

const (
	Base   Name = "base"
	Melody Name = "melody"
	Visual Name = "visual"
)

// Names lists the known profiles
var Names = []Name{Base, Melody, Visual}

// MelodyParams holds the musical parameters returned by the melody profile
type MelodyParams struct {
	ABC   string
	Key   string
	Tempo float64
	Range string
}

// Result is a checked model reply, independent of its response shape
type Result struct {
	Sentence string
	Actor    string
	Melody   *MelodyParams
	Visual   *models.VisualParams
}

// Profile is one response variant of the transform endpoint
type Profile interface {
	// Name returns the profile identifier
	Name() Name

	// MaxOutputTokens bounds the model reply for this profile
	MaxOutputTokens() int

	// ParameterGuide returns the fixed feature/status to parameter mapping, or "" if the
	// profile produces no secondary parameters
	ParameterGuide() string

	// OutputDirective names the exact reply keys and their allowed values
	OutputDirective() string

	// Schema returns the JSON schema of the expected model reply
	Schema() map[string]any

	// Decode checks parsed reply fields and builds a Result
	Decode(fields Fields, policy RangePolicy) (*Result, error)

	// Response shapes a Result into the profile's declared response body
	Response(res *Result) any
}

// Options configure profile construction
type Options struct {
	// VisualVersion is reported in every visual response
	VisualVersion int
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{VisualVersion: 1}
}

// New returns the profile registered under name
func New(name string, opts Options) (Profile, error) {
	switch Name(strings.ToLower(strings.TrimSpace(name))) {
	case Base:
		return baseProfile{}, nil
	case Melody:
		return melodyProfile{}, nil
	case Visual:
		return visualProfile{version: opts.VisualVersion}, nil
	default:
		return nil, fmt.Errorf("unknown response profile: %s (allowed: base, melody, visual)", name)
	}
}

// All returns one instance of every profile
func All(opts Options) map[Name]Profile {
	all := make(map[Name]Profile, len(Names))
	for _, name := range Names {
		p, _ := New(string(name), opts)
		all[name] = p
	}
	return all
}
