package model

// Positioning classifies which of two compared entities a response favors.
type Positioning string

const (
	PositioningStronger    Positioning = "stronger"
	PositioningWeaker      Positioning = "weaker"
	PositioningEqual       Positioning = "equal"
	PositioningNotCompared Positioning = "not_compared"
)

// FailureKind classifies why a provider call failed.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureAuth      FailureKind = "auth"
	FailureRateLimit FailureKind = "rate_limit"
	FailureTimeout   FailureKind = "timeout"
	FailureNetwork   FailureKind = "network"
	FailureUnknown   FailureKind = "unknown"
)

// TokenUsage tracks token consumption for a provider call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Total returns combined input and output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ProviderResult is the scored outcome of one (query, provider) pair.
// A failed call still produces a result with Recognized=false and
// Confidence=0 so aggregation always divides by a stable denominator.
type ProviderResult struct {
	Provider           string      `json:"provider"`
	QueryIndex         int         `json:"query_index"`
	QueryType          QueryType   `json:"query_type"`
	Entity             string      `json:"entity"`
	Recognized         bool        `json:"recognized"`
	AttributeMentioned bool        `json:"attribute_mentioned"`
	Response           string      `json:"response"`
	Confidence         int         `json:"confidence"`
	Positioning        Positioning `json:"positioning"`
	FailureKind        FailureKind `json:"failure_kind,omitempty"`
	LatencyMs          int64       `json:"latency_ms"`
	Usage              TokenUsage  `json:"usage"`
}

// Failed reports whether this result records a caught provider failure.
func (r ProviderResult) Failed() bool {
	return r.FailureKind != FailureNone
}
