// Package extraction turns a business-card image into structured contact
// fields through one best-effort call to a multimodal model.
package extraction

// ParseError is the soft failure for model output that is not valid JSON.
// Raw keeps the full model text so callers can still surface it.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string { return "failed to parse model response" }

// APIError is a transport or model-side failure on the generate call.
type APIError struct {
	Cause error
}

func (e *APIError) Error() string { return e.Cause.Error() }

func (e *APIError) Unwrap() error { return e.Cause }
