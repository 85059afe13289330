package grc

import (
	"slices"
	"strings"
)

// Keyword matching here is a case-insensitive substring heuristic. It is a
// best-effort classification aid and not a security boundary: "application"
// in an unrelated sentence still counts.

var complexityKeywords = []string{
	"authentication", "login", "user accounts", "database", "api",
	"integration", "payment", "transaction", "interconnect", "saas",
	"portal", "application", "app", "microservices", "oauth", "sso",
	"ldap", "active directory", "sql", "nosql", "redis", "queue",
	"message broker", "webhook", "rest api", "graphql",
}

// DetectComplexity reports whether a free-text description suggests application
// complexity (authentication, data stores, integrations)
func DetectComplexity(description string) bool {
	return containsAny(strings.ToLower(description), complexityKeywords)
}

type tagRule struct {
	keywords []string
	signal   func(Categorization) bool // structured input that also triggers the rule
	tags     []string
}

var contextTagRules = []tagRule{
	{
		keywords: []string{"public", "external"},
		signal:   func(c Categorization) bool { return strings.EqualFold(string(c.AppType), string(AppExternal)) },
		tags:     []string{"public-content", "external", "waf", "ddos", "boundary"},
	},
	{
		keywords: []string{"pii", "personal information", "privacy"},
		signal:   func(c Categorization) bool { return c.HasPII },
		tags:     []string{"pii", "privacy", "retention", "handling"},
	},
	{
		keywords: []string{"api", "integration", "interconnect"},
		tags:     []string{"interconnections", "interfaces", "isa"},
	},
	{
		keywords: []string{"mobile", "byod"},
		tags:     []string{"device", "byod", "external"},
	},
	{
		keywords: []string{"wireless", "wi-fi", "wifi"},
		tags:     []string{"wireless"},
	},
}

// ContextTags derives the relevance tags for a categorization from its
// description, PII flag and app type. The result is sorted and deduplicated.
func ContextTags(c Categorization) []string {
	desc := strings.ToLower(c.Description)
	set := make(map[string]bool)
	add := func(tags []string) {
		for _, t := range tags {
			set[t] = true
		}
	}
	for _, rule := range contextTagRules {
		if containsAny(desc, rule.keywords) || (rule.signal != nil && rule.signal(c)) {
			add(rule.tags)
		}
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
