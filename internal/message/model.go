package message

import (
	"strings"
	"time"
)

// Emotion is the category a message is filed under.
type Emotion string

const (
	Love      Emotion = "Love"
	Regret    Emotion = "Regret"
	Grief     Emotion = "Grief"
	Hope      Emotion = "Hope"
	Closure   Emotion = "Closure"
	Nostalgia Emotion = "Nostalgia"
	Anger     Emotion = "Anger"
	Sadness   Emotion = "Sadness"

	// Unsent is stored when no recognized emotion was given.
	Unsent Emotion = "Unsent"
)

// Emotions lists the selectable categories in display order.
var Emotions = []Emotion{Love, Regret, Grief, Hope, Closure, Nostalgia, Anger, Sadness}

// DefaultRecipient is stored when the recipient is absent or blank.
const DefaultRecipient = "Someone"

// ParseEmotion returns the matching Emotion, or Unsent when s is not one of
// Emotions. Matching is exact.
func ParseEmotion(s string) Emotion {
	for _, e := range Emotions {
		if string(e) == s {
			return e
		}
	}
	return Unsent
}

// Message is the persisted record.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Recipient string    `json:"recipient,omitempty" yaml:"recipient"`
	Emotion   Emotion   `json:"emotion" yaml:"emotion"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Reports   int       `json:"reports" yaml:"reports"`
}

// Draft is the caller-supplied part of a new message. Nil options take
// their defaults in New.
type Draft struct {
	Text      string  `json:"text"`
	Recipient *string `json:"recipient,omitempty"`
	Emotion   *string `json:"emotion,omitempty"`
}

// New builds the record stored for d. This is the only place field
// defaults are applied.
func New(id string, d Draft, now time.Time) Message {
	m := Message{
		ID:        id,
		Text:      strings.TrimSpace(d.Text),
		Recipient: DefaultRecipient,
		Emotion:   Unsent,
		CreatedAt: now.UTC(),
		Reports:   0,
	}
	if d.Recipient != nil {
		if r := strings.TrimSpace(*d.Recipient); r != "" {
			m.Recipient = r
		}
	}
	if d.Emotion != nil {
		m.Emotion = ParseEmotion(strings.TrimSpace(*d.Emotion))
	}
	return m
}
