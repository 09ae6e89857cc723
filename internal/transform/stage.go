package transform

import "errors"

// Stage is a step in the life of one transform request
type Stage string

const (
	StageReceived  Stage = "received"
	StageValidated Stage = "validated"
	StagePrompted  Stage = "prompted"
	StageGenerated Stage = "generated"
	StageParsed    Stage = "parsed"
	StageResponded Stage = "responded"
	StageFailed    Stage = "failed"
)

// next lists the only forward transition out of each stage
var next = map[Stage]Stage{
	StageReceived:  StageValidated,
	StageValidated: StagePrompted,
	StagePrompted:  StageGenerated,
	StageGenerated: StageParsed,
	StageParsed:    StageResponded,
}

// run tracks one request through its stages
type run struct {
	stage Stage
	// failedAt is the step a failed run could not complete
	failedAt Stage
}

func newRun() *run {
	return &run{stage: StageReceived}
}

func (r *run) advance(to Stage) {
	if next[r.stage] != to {
		panic("transform: illegal stage transition " + string(r.stage) + " -> " + string(to))
	}
	r.stage = to
}

// fail moves the run to FAILED and attaches the step that failed to err
func (r *run) fail(err error) error {
	r.failedAt = next[r.stage]
	r.stage = StageFailed
	return &StageError{Stage: r.failedAt, err: err}
}

// StageError records the step at which a request failed
type StageError struct {
	Stage Stage
	err   error
}

func (e *StageError) Error() string {
	return e.err.Error()
}

func (e *StageError) Unwrap() error {
	return e.err
}

// FailedAt returns the step err failed at, if it came from a transform run
func FailedAt(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
