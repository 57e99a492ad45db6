package entity

import "strings"

// Topic is one value of the fixed favorite-topics vocabulary. The set
// mirrors the upstream provider's category parameter.
type Topic string

const (
	TopicBusiness      Topic = "business"
	TopicEntertainment Topic = "entertainment"
	TopicGeneral       Topic = "general"
	TopicHealth        Topic = "health"
	TopicScience       Topic = "science"
	TopicSports        Topic = "sports"
	TopicTechnology    Topic = "technology"
)

// AllowedTopics lists the full favorite-topics vocabulary in a stable order.
func AllowedTopics() []Topic {
	return []Topic{
		TopicBusiness,
		TopicEntertainment,
		TopicGeneral,
		TopicHealth,
		TopicScience,
		TopicSports,
		TopicTechnology,
	}
}

// IsAllowedTopic reports whether raw (after trimming) belongs to the vocabulary.
func IsAllowedTopic(raw string) bool {
	t := Topic(strings.TrimSpace(raw))
	for _, allowed := range AllowedTopics() {
		if t == allowed {
			return true
		}
	}
	return false
}

// NormalizeTopics trims each entry and silently drops empty strings and
// values outside the vocabulary. Favorite topics are a preference, not
// a validated command, so unknown values are filtered rather than
// rejected.
func NormalizeTopics(raw []string) []Topic {
	topics := make([]Topic, 0, len(raw))
	for _, r := range raw {
		trimmed := strings.TrimSpace(r)
		if trimmed == "" || !IsAllowedTopic(trimmed) {
			continue
		}
		topics = append(topics, Topic(trimmed))
	}
	return topics
}

// TopicStrings converts a topic slice back to plain strings for
// persistence and query building.
func TopicStrings(topics []Topic) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, string(t))
	}
	return out
}
