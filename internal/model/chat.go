package model

// Role represents the sender of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// MessagePhase tracks the lifecycle of an optimistically appended
// message: a user message starts pending and settles to resolved or
// failed when the upstream call completes.
type MessagePhase string

const (
	PhasePending  MessagePhase = "pending"
	PhaseResolved MessagePhase = "resolved"
	PhaseFailed   MessagePhase = "failed"
)

// ResponseType discriminates the structured content of a chat reply.
type ResponseType string

const (
	ResponseBriefing ResponseType = "briefing"
	ResponseMomentum ResponseType = "momentum"
	ResponseSummary  ResponseType = "summary"
)

// ChatResponse is the structured reply from POST /chat.
type ChatResponse struct {
	Type    ResponseType `json:"type"`
	Message string       `json:"message"`
	Data    ChatData     `json:"data"`
}

// ChatData carries the optional rich content of a chat reply. Which
// fields are set depends on the response type.
type ChatData struct {
	Signals       []ReviewItem      `json:"signals,omitempty"`
	Clusters      []MomentumCluster `json:"clusters,omitempty"`
	Stats         *Stats            `json:"stats,omitempty"`
	MomentumCount int               `json:"momentum_count,omitempty"`
	CriticalCount int               `json:"critical_count,omitempty"`
}

// ChatRequest is the payload of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatMessage is a transcript entry. Local to one session; never sent
// upstream. ExpandedSignal is the index of the currently expanded
// sub-item within the structured response, nil when none is expanded.
type ChatMessage struct {
	ID             string        `json:"id"`
	Role           Role          `json:"role"`
	Text           string        `json:"text"`
	Phase          MessagePhase  `json:"phase"`
	Response       *ChatResponse `json:"response,omitempty"`
	ExpandedSignal *int          `json:"expanded_signal,omitempty"`
}
