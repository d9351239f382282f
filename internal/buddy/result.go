package buddy

import "time"

// Status tags a tool execution outcome.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusValidationError Status = "validation_error"
	StatusError           Status = "error"
)

// Result is the structured outcome of one tool invocation, returned to the
// calling agent as serialized JSON. Validation and transport failures are
// reported here as data; only base-URL misconfiguration escapes as an error.
type Result struct {
	Status             Status         `json:"status"`
	Action             Action         `json:"action,omitempty"`
	RequestID          string         `json:"requestId,omitempty"`
	StatusMessage      string         `json:"statusMessage,omitempty"`
	RequestBody        map[string]any `json:"requestBody,omitempty"`
	Response           any            `json:"response,omitempty"`
	ValidationErrors   []string       `json:"validationErrors,omitempty"`
	ValidationWarnings []string       `json:"validationWarnings,omitempty"`
	Error              *APIError      `json:"error,omitempty"`
}

// Report is the richer envelope emitted by the report tool variant.
type Report struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	Raw       *Result `json:"raw"`
	Timestamp string  `json:"timestamp"`
}

// NewReport wraps a pipeline result in the report envelope.
func NewReport(res *Result) *Report {
	msg := res.StatusMessage
	if msg == "" {
		switch res.Status {
		case StatusSuccess:
			msg = "request accepted by Project Buddy"
		case StatusValidationError:
			msg = "input failed validation; nothing was sent"
		default:
			msg = "Project Buddy request failed"
		}
	}
	return &Report{
		Success:   res.Status == StatusSuccess,
		Message:   msg,
		Raw:       res,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
