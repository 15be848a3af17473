package client

import (
	_ "embed"

	"unsent/internal/message"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

var fallback = mustDecodeFallback(fallbackYAML)

func mustDecodeFallback(b []byte) []message.Message {
	var out []message.Message
	if err := yaml.Unmarshal(b, &out); err != nil {
		panic("client: bad fallback dataset: " + err.Error())
	}
	return out
}

// Fallback returns a fresh copy of the bundled sample messages.
func Fallback() []message.Message {
	out := make([]message.Message, len(fallback))
	copy(out, fallback)
	return out
}
