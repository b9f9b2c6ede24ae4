package model

// ServiceKnowledge records which providers affirmed a tested service.
type ServiceKnowledge struct {
	KnownBy   []string `json:"known_by"`
	UnknownBy []string `json:"unknown_by"`
}

// Analysis is the aggregate outcome of one scan. It is derived as a
// pure function of a completed set of ProviderResults and is never
// mutated in place.
type Analysis struct {
	OverallRecognition    int                         `json:"overall_recognition"`
	ServiceKnowledge      map[string]ServiceKnowledge `json:"service_knowledge,omitempty"`
	KnowledgeGaps         []string                    `json:"knowledge_gaps,omitempty"`
	CompetitorPositioning map[string]Positioning      `json:"competitor_positioning,omitempty"`
}
