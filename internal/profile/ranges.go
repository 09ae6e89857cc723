package profile

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ipcctiled/transform-api/internal/models"
)

// Parameter ranges the model is instructed to honor
const (
	SegmentsMin = 0.5
	SegmentsMax = 4.0

	HueMin = 0
	HueMax = 360

	SpeedMin = 0.001
	SpeedMax = 0.02

	TempoMin = 60
	TempoMax = 120

	noiseScaleTolerance = 1e-9
)

// NoiseScaleByStatus maps each pattern status to the noise scale the display expects
var NoiseScaleByStatus = map[models.PatternStatus]float64{
	models.PatternMaintained: 0.01,
	models.PatternChanged:    0.05,
	models.PatternOmitted:    0.10,
}

// noiseScaleSteps is NoiseScaleByStatus sorted ascending
var noiseScaleSteps = func() []float64 {
	steps := make([]float64, 0, len(NoiseScaleByStatus))
	for _, v := range NoiseScaleByStatus {
		steps = append(steps, v)
	}
	slices.Sort(steps)
	return steps
}()

// formatNoiseScale renders a step with two decimals, as the prompt states it
func formatNoiseScale(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// noiseScaleChoices joins the allowed steps, e.g. "0.01|0.05|0.10"
func noiseScaleChoices(sep string) string {
	parts := make([]string, len(noiseScaleSteps))
	for i, v := range noiseScaleSteps {
		parts[i] = formatNoiseScale(v)
	}
	return strings.Join(parts, sep)
}

// noiseScaleMapping states the table in pattern status order, e.g. "maintained = 0.01, ..."
func noiseScaleMapping() string {
	parts := make([]string, 0, len(models.PatternStatuses))
	for _, status := range models.PatternStatuses {
		parts = append(parts, fmt.Sprintf("%s = %s", status, formatNoiseScale(NoiseScaleByStatus[status])))
	}
	return strings.Join(parts, ", ")
}

// RangePolicy decides what happens to model-supplied values outside their range
type RangePolicy string

const (
	// PolicyReject fails the reply as malformed
	PolicyReject RangePolicy = "reject"
	// PolicyClamp moves the value to the closest allowed one
	PolicyClamp RangePolicy = "clamp"
	// PolicyPassthrough forwards the value untouched
	PolicyPassthrough RangePolicy = "passthrough"
)

// ParseRangePolicy validates a configured policy name
func ParseRangePolicy(s string) (RangePolicy, error) {
	p := RangePolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PolicyReject, PolicyClamp, PolicyPassthrough:
		return p, nil
	case "":
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown range policy: %s (allowed: reject, clamp, passthrough)", s)
	}
}

func within(key string, v, lo, hi float64, policy RangePolicy) (float64, error) {
	if v >= lo && v <= hi {
		return v, nil
	}
	switch policy {
	case PolicyClamp:
		return math.Min(math.Max(v, lo), hi), nil
	case PolicyPassthrough:
		return v, nil
	default:
		return 0, &FieldError{Key: key, Reason: fmt.Sprintf("%g outside [%g, %g]", v, lo, hi)}
	}
}

func checkHue(v float64, policy RangePolicy) (float64, error) {
	v, err := within("hue", v, HueMin, HueMax, policy)
	if err != nil {
		return 0, err
	}
	if v == math.Trunc(v) {
		return v, nil
	}
	switch policy {
	case PolicyClamp:
		return math.Round(v), nil
	case PolicyPassthrough:
		return v, nil
	default:
		return 0, &FieldError{Key: "hue", Reason: fmt.Sprintf("%g is not whole degrees", v)}
	}
}

func checkNoiseScale(v float64, policy RangePolicy) (float64, error) {
	nearest := noiseScaleSteps[0]
	for _, step := range noiseScaleSteps {
		if math.Abs(v-step) < math.Abs(v-nearest) {
			nearest = step
		}
	}
	if math.Abs(v-nearest) <= noiseScaleTolerance {
		return nearest, nil
	}
	switch policy {
	case PolicyClamp:
		return nearest, nil
	case PolicyPassthrough:
		return v, nil
	default:
		return 0, &FieldError{Key: "noiseScale", Reason: fmt.Sprintf("%g is not one of %s", v, noiseScaleChoices(", "))}
	}
}

// checkActor only rejects unknown categories under PolicyReject
func checkActor(key, actor string, policy RangePolicy) (string, error) {
	if policy != PolicyReject {
		return actor, nil
	}
	if slices.ContainsFunc(models.ActorCategories, func(c string) bool {
		return strings.EqualFold(c, strings.TrimSpace(actor))
	}) {
		return actor, nil
	}
	return "", &FieldError{Key: key, Reason: fmt.Sprintf("%q is not one of %s", actor, strings.Join(models.ActorCategories, "|"))}
}
