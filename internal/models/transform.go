package models

// Feature is the linguistic dimension a transformation alters
type Feature string

const (
	FeatureVocab        Feature = "vocab"
	FeatureModality     Feature = "modality"
	FeatureTransitivity Feature = "transitivity"
)

// Features lists every accepted feature in request-check order
var Features = []Feature{FeatureVocab, FeatureModality, FeatureTransitivity}

// Valid reports whether f is one of the accepted features
func (f Feature) Valid() bool {
	for _, known := range Features {
		if f == known {
			return true
		}
	}
	return false
}

// PatternStatus controls how calibrated-confidence language is treated
type PatternStatus string

const (
	PatternMaintained PatternStatus = "maintained"
	PatternChanged    PatternStatus = "changed"
	PatternOmitted    PatternStatus = "omitted"
)

// DefaultPatternStatus applies when a request leaves patternStatus out
const DefaultPatternStatus = PatternMaintained

// PatternStatuses lists every accepted pattern status
var PatternStatuses = []PatternStatus{PatternMaintained, PatternChanged, PatternOmitted}

// Valid reports whether s is one of the accepted statuses. The empty status is not valid
// on its own; callers normalize it first.
func (s PatternStatus) Valid() bool {
	for _, known := range PatternStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrDefault returns s, or the default status when s is empty
func (s PatternStatus) OrDefault() PatternStatus {
	if s == "" {
		return DefaultPatternStatus
	}
	return s
}

// TransformRequest is the body accepted by the transform endpoint
type TransformRequest struct {
	Text          string        `json:"text" validate:"required"`
	Feature       Feature       `json:"feature" validate:"required,oneof=vocab modality transitivity"`
	PatternStatus PatternStatus `json:"patternStatus,omitempty" validate:"omitempty,oneof=maintained changed omitted"`
	// BaselineMelody is ABC-like notation, only used by the melody profile
	BaselineMelody string `json:"abc_original,omitempty"`
}

// Normalized returns a copy with the default pattern status filled in
func (r TransformRequest) Normalized() TransformRequest {
	r.PatternStatus = r.PatternStatus.OrDefault()
	return r
}

// Actor categories the model attributes a transformed sentence to
var ActorCategories = []string{"NGO", "ministry", "lobby", "media", "government", "industry"}
