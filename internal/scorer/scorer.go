// Package scorer applies deterministic substring heuristics to
// provider-returned free text: recognition, confidence, and
// competitive positioning. The heuristics are intentionally simple
// and can misclassify paraphrased or negated statements; tuning
// happens through the Heuristics phrase lists.
package scorer

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Confidence scoring constants.
const (
	baseConfidence        = 50
	attributeBonus        = 25
	lengthBonus           = 10
	longResponseThreshold = 500
	veryLongThreshold     = 1000
	confidentPhraseBonus  = 5
	maxConfidence         = 100
)

// Scored is the scorer's verdict on one response.
type Scored struct {
	Recognized         bool
	AttributeMentioned bool
	Confidence         int
	Positioning        model.Positioning
}

// Scorer evaluates raw response text against a query. It is a pure
// function of its inputs: identical (query, response) pairs always
// produce the same Scored.
type Scorer struct {
	heuristics Heuristics
}

// New creates a Scorer with the given phrase lists.
func New(h Heuristics) *Scorer {
	return &Scorer{heuristics: h}
}

// Score evaluates a single provider response for the query it answers.
func (s *Scorer) Score(q model.Query, response string) Scored {
	text := normalize(response)

	scored := Scored{
		Recognized:  s.recognized(q, text),
		Positioning: model.PositioningNotCompared,
	}

	if q.Attribute != "" {
		scored.AttributeMentioned = strings.Contains(text, normalize(q.Attribute))
	}

	scored.Confidence = s.confidence(scored, response, text)

	if q.Type == model.QueryCompetitorCompare && q.CompareTo != "" {
		scored.Positioning = s.positioning(q, text)
	}

	return scored
}

// recognized applies the two-part gate: the entity name or domain must
// appear, and no hedging phrase may appear. Both conditions must hold.
func (s *Scorer) recognized(q model.Query, text string) bool {
	mentioned := strings.Contains(text, normalize(q.Entity))
	if !mentioned && q.Domain != "" {
		mentioned = strings.Contains(text, normalize(q.Domain))
	}
	if !mentioned {
		return false
	}

	for _, phrase := range s.heuristics.HedgingPhrases {
		if strings.Contains(text, normalize(phrase)) {
			return false
		}
	}
	return true
}

// confidence scores a recognized response from a base of 50 with
// bonuses for attribute mentions, response length, and confident
// language, clamped to [0,100]. Unrecognized responses score 0.
func (s *Scorer) confidence(scored Scored, raw, text string) int {
	if !scored.Recognized {
		return 0
	}

	score := baseConfidence
	if scored.AttributeMentioned {
		score += attributeBonus
	}
	if len(raw) > longResponseThreshold {
		score += lengthBonus
	}
	if len(raw) > veryLongThreshold {
		score += lengthBonus
	}
	for _, phrase := range s.heuristics.ConfidentPhrases {
		if strings.Contains(text, normalize(phrase)) {
			score += confidentPhraseBonus
		}
	}

	if score > maxConfidence {
		score = maxConfidence
	}
	if score < 0 {
		score = 0
	}
	return score
}

// positioning scans comparative phrase templates built from the two
// entity names. Stronger templates win over weaker ones; if neither
// matches but both names appear, the entities are considered equal.
func (s *Scorer) positioning(q model.Query, text string) model.Positioning {
	entity := normalize(q.Entity)
	competitor := normalize(q.CompareTo)

	for _, tmpl := range s.heuristics.StrongerTemplates {
		if strings.Contains(text, fmt.Sprintf(normalize(tmpl), entity)) {
			return model.PositioningStronger
		}
	}
	for _, tmpl := range s.heuristics.WeakerTemplates {
		if strings.Contains(text, fmt.Sprintf(normalize(tmpl), competitor)) {
			return model.PositioningWeaker
		}
	}

	if strings.Contains(text, entity) && strings.Contains(text, competitor) {
		return model.PositioningEqual
	}
	return model.PositioningNotCompared
}

// normalize folds text to NFKC form and lower case so matching is
// stable across provider quirks (smart quotes, full-width characters).
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
