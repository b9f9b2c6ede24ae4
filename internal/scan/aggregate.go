package scan

import (
	"math"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Aggregate reduces the completed result set for one scan into an
// Analysis. It is a pure function: no I/O, no mutation of inputs, and
// a zero denominator yields 0 rather than NaN.
func Aggregate(queries []model.Query, results []model.ProviderResult) model.Analysis {
	analysis := model.Analysis{}

	// Overall recognition from brand_recall results only.
	var recallTotal, recallRecognized int
	for _, r := range results {
		if r.QueryType != model.QueryBrandRecall {
			continue
		}
		recallTotal++
		if r.Recognized {
			recallRecognized++
		}
	}
	if recallTotal > 0 {
		analysis.OverallRecognition = int(math.Round(float64(recallRecognized) / float64(recallTotal) * 100))
	}

	// Per-service knowledge from service_check results. Iterate the
	// query list so service order is preserved.
	for i, q := range queries {
		if q.Type != model.QueryServiceCheck {
			continue
		}

		knowledge := model.ServiceKnowledge{}
		for _, r := range results {
			if r.QueryIndex != i {
				continue
			}
			if r.AttributeMentioned {
				knowledge.KnownBy = append(knowledge.KnownBy, r.Provider)
			} else {
				knowledge.UnknownBy = append(knowledge.UnknownBy, r.Provider)
			}
		}

		if analysis.ServiceKnowledge == nil {
			analysis.ServiceKnowledge = make(map[string]model.ServiceKnowledge)
		}
		analysis.ServiceKnowledge[q.Attribute] = knowledge

		if len(knowledge.KnownBy) == 0 {
			analysis.KnowledgeGaps = append(analysis.KnowledgeGaps, q.Attribute)
		}
	}

	// Competitor positioning only when at least one compare result
	// exists.
	for _, r := range results {
		if r.QueryType != model.QueryCompetitorCompare {
			continue
		}
		if analysis.CompetitorPositioning == nil {
			analysis.CompetitorPositioning = make(map[string]model.Positioning)
		}
		analysis.CompetitorPositioning[r.Provider] = r.Positioning
	}

	return analysis
}
