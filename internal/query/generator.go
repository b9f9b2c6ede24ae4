// Package query builds the natural-language prompts a scan sends to
// every provider. Generation is deterministic: the same profile always
// produces the same queries in the same order.
package query

import (
	"fmt"

	"github.com/sells-group/visibility-cli/internal/model"
)

// BuildQueries produces the ordered query list for one scan: exactly
// one brand_recall query, one service_check query per tested service
// (max 3), and one competitor_compare query when a competitor name is
// supplied. Absent optional fields simply omit the corresponding
// query; there are no error conditions.
func BuildQueries(profile model.BusinessProfile) []model.Query {
	queries := []model.Query{
		{
			Type:   model.QueryBrandRecall,
			Prompt: brandRecallPrompt(profile),
			Entity: profile.Name,
			Domain: profile.Domain,
		},
	}

	for _, service := range profile.TestedServices() {
		queries = append(queries, model.Query{
			Type:      model.QueryServiceCheck,
			Prompt:    serviceCheckPrompt(profile, service),
			Entity:    profile.Name,
			Domain:    profile.Domain,
			Attribute: service,
		})
	}

	if profile.Competitor != "" {
		queries = append(queries, model.Query{
			Type:      model.QueryCompetitorCompare,
			Prompt:    competitorComparePrompt(profile),
			Entity:    profile.Name,
			Domain:    profile.Domain,
			CompareTo: profile.Competitor,
		})
	}

	return queries
}

func brandRecallPrompt(p model.BusinessProfile) string {
	subject := p.Name
	if p.Domain != "" {
		subject = fmt.Sprintf("%s (%s)", p.Name, p.Domain)
	}
	if p.Location != "" {
		return fmt.Sprintf(
			"What do you know about %s, a business based in %s? Describe their services, reputation, and what they are known for.",
			subject, p.Location,
		)
	}
	return fmt.Sprintf(
		"What do you know about %s? Describe their services, reputation, and what they are known for.",
		subject,
	)
}

func serviceCheckPrompt(p model.BusinessProfile, service string) string {
	return fmt.Sprintf(
		"Does %s offer %s? What can you tell me about the %s services provided by %s?",
		p.Name, service, service, p.Name,
	)
}

func competitorComparePrompt(p model.BusinessProfile) string {
	if len(p.Services) > 0 && p.Services[0] != "" {
		return fmt.Sprintf(
			"Compare %s and %s for a customer looking for %s. Which would you recommend and why?",
			p.Name, p.Competitor, p.Services[0],
		)
	}
	return fmt.Sprintf(
		"Compare %s and %s. Which would you recommend and why?",
		p.Name, p.Competitor,
	)
}
