// Package query filters and orders a snapshot of messages for display.
package query

import (
	"sort"
	"strings"

	"unsent/internal/message"
)

// All disables the emotion filter.
const All = "All"

type Query struct {
	SearchText string
	Emotion    string
}

// Filter returns the records matching q, newest first. A record must match
// both the search text and the emotion. Records with equal CreatedAt keep
// their input order. records is never modified.
func Filter(records []message.Message, q Query) []message.Message {
	needle := strings.ToLower(q.SearchText)

	out := make([]message.Message, 0, len(records))
	for _, m := range records {
		if matchesSearch(m, needle) && matchesEmotion(m, q.Emotion) {
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesSearch(m message.Message, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(m.Text), needle) {
		return true
	}
	return m.Recipient != "" && strings.Contains(strings.ToLower(m.Recipient), needle)
}

func matchesEmotion(m message.Message, emotion string) bool {
	return emotion == "" || emotion == All || string(m.Emotion) == emotion
}
