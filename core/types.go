package core

import (
	"strings"

	"github.com/erossel/convo/content"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

type Message struct {
	Role  Role           `json:"role"`
	Parts []content.Part `json:"content"`
}

// Text concatenates the text parts of the message, skipping images.
func (m Message) Text() string {
	var b strings.Builder
	for _, part := range m.Parts {
		if part.Kind != content.KindText {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// TextOnly reports whether the message consists of exactly one text part.
func (m Message) TextOnly() bool {
	return len(m.Parts) == 1 && m.Parts[0].Kind == content.KindText
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// Completion is the reply of the remote model for one request.
type Completion struct {
	Content string
	Model   string
	Usage   Usage
}
