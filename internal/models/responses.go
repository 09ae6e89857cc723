package models

// BaseResponse is returned by the base profile
type BaseResponse struct {
	Success  bool   `json:"success"`
	Sentence string `json:"sentence"`
	Actor    string `json:"actor"`
}

// MelodyResponse is returned by the melody profile. Key, Tempo and Range are kept because
// the model is required to produce them.
type MelodyResponse struct {
	Success  bool    `json:"success"`
	Sentence string  `json:"sentence"`
	ABC      string  `json:"abc"`
	Actor    string  `json:"actor"`
	Key      string  `json:"key"`
	Tempo    float64 `json:"tempo"`
	Range    string  `json:"range"`
}

// VisualResponse is returned by the visual profile
type VisualResponse struct {
	Version    int     `json:"version"`
	Text       string  `json:"text"`
	ActorGuess string  `json:"actorGuess"`
	Segments   float64 `json:"segments"`
	Hue        float64 `json:"hue"`
	Speed      float64 `json:"speed"`
	NoiseScale float64 `json:"noiseScale"`
}

// ErrorResponse is the 4xx body
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// FailureResponse is the 5xx body
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VisualParams drive the generative display
type VisualParams struct {
	Segments   float64 `json:"segments"`
	Hue        float64 `json:"hue"`
	Speed      float64 `json:"speed"`
	NoiseScale float64 `json:"noiseScale"`
}

// Params extracts the display parameters from a visual response
func (r VisualResponse) Params() VisualParams {
	return VisualParams{
		Segments:   r.Segments,
		Hue:        r.Hue,
		Speed:      r.Speed,
		NoiseScale: r.NoiseScale,
	}
}

// DefaultVisualParams is what the display shows before any transformation
var DefaultVisualParams = VisualParams{Segments: 0.5, Hue: 200, Speed: 0.05, NoiseScale: 0.01}
