package dispatch

import "encoding/json"

// Request is one decoded tool invocation, transport-agnostic.
type Request struct {
	Name      string
	Arguments map[string]any
}

// Result is the uniform envelope every dispatch path produces. It marshals
// to {"success":true, ...payload} on success and to
// {"success":false,"error":...,"kind":...} with an optional traceback on
// failure. No other return shape crosses the dispatch boundary.
type Result struct {
	Success   bool
	Payload   map[string]any
	Err       *Error
	Traceback string
}

// Succeed wraps a success payload in the envelope.
func Succeed(payload map[string]any) Result {
	return Result{Success: true, Payload: payload}
}

// Fail wraps a categorized error in the envelope.
func Fail(err *Error) Result {
	return Result{Err: err}
}

// MarshalJSON renders the envelope wire shape.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Payload)+3)
	if r.Success {
		for k, v := range r.Payload {
			out[k] = v
		}
		out["success"] = true
		return json.Marshal(out)
	}

	out["success"] = false
	if r.Err != nil {
		out["error"] = r.Err.Message
		out["kind"] = string(r.Err.Kind)
	} else {
		out["error"] = "unknown error"
		out["kind"] = string(KindInternal)
	}
	if r.Traceback != "" {
		out["traceback"] = r.Traceback
	}
	return json.Marshal(out)
}
