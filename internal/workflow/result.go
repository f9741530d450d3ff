package workflow

import "github.com/inkflow/signbridge/internal/platform/errors"

// Step names the stages of the combined signing workflow.
type Step string

const (
	StepExtraction    Step = "extraction"
	StepRecipientView Step = "recipient_view"
	StepFill          Step = "fill"
	StepSign          Step = "sign"
)

// StepResult records the outcome of one attempted workflow stage. Stages
// that were never reached produce no StepResult at all.
type StepResult struct {
	Step    Step
	Success bool

	// Code and Message are set only on failure.
	Code    errors.Code
	Message string

	// Stage payloads, populated by the stage that produced them.
	EnvelopeIDs  []string
	AccessCodes  []string
	SigningURL   string
	FilledFields []string
}

// Result is the outcome of a combined workflow run. Success means the
// essential stages (extraction and recipient view) succeeded; fill and
// sign failures are recorded in Steps without failing the run.
type Result struct {
	Success bool
	Steps   []StepResult
	Final   FinalState
}

// FinalState summarizes what the workflow established.
type FinalState struct {
	EnvelopeID       string
	AccessCode       string
	SigningURL       string
	SigningCompleted bool
}

// StepFor returns the recorded result for a stage, if that stage ran.
func (r Result) StepFor(step Step) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepResult{}, false
}

func stepOK(step Step) StepResult {
	return StepResult{Step: step, Success: true}
}

func stepFailed(step Step, err error) StepResult {
	return StepResult{
		Step:    step,
		Code:    errors.CodeOf(err),
		Message: errors.MessageOf(err),
	}
}
