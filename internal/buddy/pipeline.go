package buddy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Pipeline runs the full submit flow for one tool invocation:
// decode -> merge defaults -> (infer action) -> normalize -> strip -> POST.
// It holds only read-only configuration; invocations share nothing and may
// run fully in parallel.
type Pipeline struct {
	Client        *Client
	Defaults      Defaults
	DefaultAction Action // tie-break fallback for action inference
}

// Run executes the pipeline. fixed pins the action for the single-purpose
// tools; pass "" to honor the payload's action field or infer one. The
// returned Result is always non-nil and always structured — failures at any
// step terminate the pipeline but never escape as errors.
func (p *Pipeline) Run(ctx context.Context, fixed Action, raw json.RawMessage) *Result {
	res := &Result{RequestID: uuid.New().String()}

	in, err := DecodeInput(raw)
	if err != nil {
		res.Status = StatusValidationError
		res.Action = fixed
		res.ValidationErrors = []string{err.Error()}
		return res
	}

	merged := Merge(p.Defaults, in)

	action := fixed
	if action == "" {
		action, _ = ParseAction(merged.Action) // DecodeInput already rejected invalid values
	}
	if action == "" {
		inf := InferAction(merged, p.DefaultAction)
		action = inf.Action
		if inf.Warning != "" {
			res.ValidationWarnings = append(res.ValidationWarnings, inf.Warning)
		}
	}
	res.Action = action
	if action == "" {
		res.Status = StatusValidationError
		res.ValidationErrors = []string{"action is required or must be inferable"}
		return res
	}

	norm := Normalize(action, merged)
	res.ValidationWarnings = append(res.ValidationWarnings, norm.Warnings...)
	if len(norm.Errors) > 0 {
		res.Status = StatusValidationError
		res.ValidationErrors = norm.Errors
		return res
	}

	body := StripBody(norm.Body)
	res.RequestBody = body

	response, apiErr := p.Client.Post(ctx, action, body)
	if apiErr != nil {
		// The attempted body stays on the result for diagnosis.
		res.Status = StatusError
		res.Error = apiErr
		res.StatusMessage = apiErr.Message
		return res
	}

	res.Status = StatusSuccess
	res.Response = response
	res.StatusMessage = fmt.Sprintf("submitted %s request to Project Buddy", action)
	return res
}
