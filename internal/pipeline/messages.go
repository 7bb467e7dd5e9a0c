package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// exportedMessage is one element of a JSON SMS export. Export tools
// disagree on the field name.
type exportedMessage struct {
	Body    string `json:"body"`
	Message string `json:"message"`
	Text    string `json:"text"`
}

func (m exportedMessage) content() string {
	switch {
	case m.Body != "":
		return m.Body
	case m.Message != "":
		return m.Message
	default:
		return m.Text
	}
}

// DecodeMessages splits an export into raw message strings. It accepts a
// JSON array of strings, a JSON array of objects carrying the text in
// "body", "message" or "text", or plain text with one message per line.
// Blank entries are dropped.
func DecodeMessages(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		return decodeJSONMessages(trimmed)
	}

	var out []string
	for _, line := range strings.Split(string(trimmed), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func decodeJSONMessages(data []byte) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("DecodeMessages: unmarshal array: %w", err)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err != nil {
			var msg exportedMessage
			if err := json.Unmarshal(item, &msg); err != nil {
				return nil, fmt.Errorf("DecodeMessages: item %d: %w", i, err)
			}
			text = msg.content()
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, text)
	}
	return out, nil
}
