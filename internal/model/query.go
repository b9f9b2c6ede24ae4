package model

// QueryType identifies what a generated query is probing for.
type QueryType string

const (
	QueryBrandRecall       QueryType = "brand_recall"
	QueryServiceCheck      QueryType = "service_check"
	QueryCompetitorCompare QueryType = "competitor_compare"
)

// Query is a single natural-language prompt sent to every provider.
// Queries are immutable once generated.
type Query struct {
	Type      QueryType `json:"type"`
	Prompt    string    `json:"prompt"`
	Entity    string    `json:"entity"`
	Domain    string    `json:"domain,omitempty"`
	Attribute string    `json:"attribute,omitempty"` // tested service for service_check
	CompareTo string    `json:"compare_to,omitempty"`
}
