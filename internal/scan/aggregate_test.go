package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-cli/internal/model"
)

func TestAggregateEmptyInputs(t *testing.T) {
	analysis := Aggregate(nil, nil)
	assert.Equal(t, 0, analysis.OverallRecognition)
	assert.Nil(t, analysis.ServiceKnowledge)
	assert.Nil(t, analysis.KnowledgeGaps)
	assert.Nil(t, analysis.CompetitorPositioning)
}

func TestAggregateRecognitionRatio(t *testing.T) {
	queries := []model.Query{{Type: model.QueryBrandRecall}}
	results := []model.ProviderResult{
		{QueryIndex: 0, QueryType: model.QueryBrandRecall, Provider: "a", Recognized: true},
		{QueryIndex: 0, QueryType: model.QueryBrandRecall, Provider: "b", Recognized: true},
		{QueryIndex: 0, QueryType: model.QueryBrandRecall, Provider: "c", Recognized: false},
	}

	analysis := Aggregate(queries, results)
	assert.Equal(t, 67, analysis.OverallRecognition)
}

func TestAggregateNoRecallResults(t *testing.T) {
	queries := []model.Query{{Type: model.QueryServiceCheck, Attribute: "drain cleaning"}}
	results := []model.ProviderResult{
		{QueryIndex: 0, QueryType: model.QueryServiceCheck, Provider: "a", AttributeMentioned: true},
	}

	analysis := Aggregate(queries, results)
	assert.Equal(t, 0, analysis.OverallRecognition)
}

func TestAggregateServiceKnowledge(t *testing.T) {
	queries := []model.Query{
		{Type: model.QueryBrandRecall},
		{Type: model.QueryServiceCheck, Attribute: "drain cleaning"},
		{Type: model.QueryServiceCheck, Attribute: "pipe relining"},
	}
	results := []model.ProviderResult{
		{QueryIndex: 1, QueryType: model.QueryServiceCheck, Provider: "a", AttributeMentioned: true},
		{QueryIndex: 1, QueryType: model.QueryServiceCheck, Provider: "b", AttributeMentioned: false},
		{QueryIndex: 2, QueryType: model.QueryServiceCheck, Provider: "a", AttributeMentioned: false},
		{QueryIndex: 2, QueryType: model.QueryServiceCheck, Provider: "b", AttributeMentioned: false},
	}

	analysis := Aggregate(queries, results)

	require.Contains(t, analysis.ServiceKnowledge, "drain cleaning")
	assert.Equal(t, []string{"a"}, analysis.ServiceKnowledge["drain cleaning"].KnownBy)
	assert.Equal(t, []string{"b"}, analysis.ServiceKnowledge["drain cleaning"].UnknownBy)

	// A service no provider affirmed is a knowledge gap.
	assert.Equal(t, []string{"pipe relining"}, analysis.KnowledgeGaps)
}

func TestAggregateCompetitorPositioning(t *testing.T) {
	queries := []model.Query{
		{Type: model.QueryCompetitorCompare, Entity: "Acme", CompareTo: "Bolt"},
	}
	results := []model.ProviderResult{
		{QueryIndex: 0, QueryType: model.QueryCompetitorCompare, Provider: "a", Positioning: model.PositioningStronger},
		{QueryIndex: 0, QueryType: model.QueryCompetitorCompare, Provider: "b", Positioning: model.PositioningNotCompared},
	}

	analysis := Aggregate(queries, results)
	require.NotNil(t, analysis.CompetitorPositioning)
	assert.Equal(t, model.PositioningStronger, analysis.CompetitorPositioning["a"])
	assert.Equal(t, model.PositioningNotCompared, analysis.CompetitorPositioning["b"])
}

func TestAggregateNoCompetitorNoMap(t *testing.T) {
	queries := []model.Query{{Type: model.QueryBrandRecall}}
	results := []model.ProviderResult{
		{QueryIndex: 0, QueryType: model.QueryBrandRecall, Provider: "a", Recognized: true},
	}

	analysis := Aggregate(queries, results)
	assert.Nil(t, analysis.CompetitorPositioning)
}
