package domain

// DispatchStatus is the outcome reported by the executor for a directive.
type DispatchStatus string

const (
	StatusOK    DispatchStatus = "ok"
	StatusError DispatchStatus = "error"
)

// DispatchParams are the flags a directive is dispatched with.
type DispatchParams struct {
	Silent        bool `json:"silent"`
	RecordHistory bool `json:"store_history"`

	// SuppressInput is optional; nil leaves the executor default in place.
	SuppressInput *bool `json:"suppress_input,omitempty"`

	// UserContext is opaque to the bridge and handed through untouched.
	UserContext any `json:"user_context,omitempty"`

	AllowInteractiveInput bool `json:"allow_stdin"`
}

// Directive is an outbound command for the remote session's magic interpreter.
type Directive struct {
	Code   string         `json:"code"`
	Params DispatchParams `json:"params"`
}

// DispatchResult is what the executor reports back for one directive.
type DispatchResult struct {
	Status         DispatchStatus `json:"status"`
	ErrorName      string         `json:"ename,omitempty"`
	ErrorValue     string         `json:"evalue,omitempty"`
	ExecutionCount int            `json:"execution_count,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// Failed reports whether the executor flagged the directive as an error.
func (r DispatchResult) Failed() bool {
	return r.Status == StatusError
}

// OK returns a successful result.
func OK() DispatchResult {
	return DispatchResult{Status: StatusOK}
}

// ErrorResult returns a failed result carrying the given error value.
func ErrorResult(value string) DispatchResult {
	return DispatchResult{Status: StatusError, ErrorValue: value}
}
