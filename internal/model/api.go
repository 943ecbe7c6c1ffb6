package model

// VerifyRequest is the payload of POST /auth/verify.
type VerifyRequest struct {
	Code string `json:"code"`
}

// VerifyResponse carries the opaque session token on success.
type VerifyResponse struct {
	Token string `json:"token"`
}

// FeedbackRequest is the payload of POST /feedback.
type FeedbackRequest struct {
	SignalID     string `json:"signal_id"`
	FeedbackType string `json:"feedback_type"`
}

// OutcomeRequest logs what happened after a signal was surfaced.
type OutcomeRequest struct {
	SignalID     string `json:"signal_id"`
	Acted        bool   `json:"acted"`
	ResponseType string `json:"response_type"`
	Notes        string `json:"notes"`
}

// RunPipelineRequest is the payload of POST /signals/run. Keywords are
// optional; the backend falls back to its defaults.
type RunPipelineRequest struct {
	Keywords []string `json:"keywords,omitempty"`
}

// RunPipelineResponse summarizes a pipeline pass.
type RunPipelineResponse struct {
	Ingested   int `json:"ingested"`
	Filtered   int `json:"filtered"`
	Classified int `json:"classified"`
	Queued     int `json:"queued"`
	Duplicates int `json:"duplicates"`
}
