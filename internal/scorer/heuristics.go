package scorer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Heuristics holds the phrase lists the scorer matches against. They
// are data, not logic: tuning the lists changes scoring behavior
// without changing the algorithm's shape.
type Heuristics struct {
	// HedgingPhrases disqualify a response from counting as recognition
	// even when the entity name or domain appears.
	HedgingPhrases []string `yaml:"hedging_phrases"`

	// ConfidentPhrases each add a small confidence bonus when present
	// in a recognized response.
	ConfidentPhrases []string `yaml:"confident_phrases"`

	// StrongerTemplates and WeakerTemplates are comparative phrase
	// templates; "%s" is replaced with the entity or competitor name.
	// Stronger templates are checked before weaker ones.
	StrongerTemplates []string `yaml:"stronger_templates"`
	WeakerTemplates   []string `yaml:"weaker_templates"`
}

// DefaultHeuristics returns the built-in phrase lists.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		HedgingPhrases: []string{
			"i don't have specific information",
			"i do not have specific information",
			"i'm not familiar with",
			"i am not familiar with",
			"i couldn't find any information",
			"i could not find any information",
			"i don't have any information",
			"no specific information available",
			"visit their official website",
			"i'm unable to provide details",
			"i am unable to provide details",
		},
		ConfidentPhrases: []string{
			"is known for",
			"specializes in",
			"well-regarded",
			"established",
			"has a reputation",
			"offers a range of",
			"their services include",
		},
		StrongerTemplates: []string{
			"%s is better",
			"%s is stronger",
			"%s is the better",
			"recommend %s",
			"would choose %s",
			"%s stands out",
			"%s has the edge",
		},
		WeakerTemplates: []string{
			"%s is better",
			"%s is stronger",
			"%s is the better",
			"recommend %s",
			"would choose %s",
			"%s stands out",
			"%s has the edge",
		},
	}
}

// LoadHeuristics reads phrase lists from a YAML file. Lists absent
// from the file fall back to the built-in defaults, so a tuning file
// only needs to override what it changes.
func LoadHeuristics(path string) (Heuristics, error) {
	defaults := DefaultHeuristics()

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, eris.Wrapf(err, "scorer: read heuristics %s", path)
	}

	var h Heuristics
	if err := yaml.Unmarshal(data, &h); err != nil {
		return defaults, eris.Wrapf(err, "scorer: parse heuristics %s", path)
	}

	if len(h.HedgingPhrases) == 0 {
		h.HedgingPhrases = defaults.HedgingPhrases
	}
	if len(h.ConfidentPhrases) == 0 {
		h.ConfidentPhrases = defaults.ConfidentPhrases
	}
	if len(h.StrongerTemplates) == 0 {
		h.StrongerTemplates = defaults.StrongerTemplates
	}
	if len(h.WeakerTemplates) == 0 {
		h.WeakerTemplates = defaults.WeakerTemplates
	}

	return h, nil
}
