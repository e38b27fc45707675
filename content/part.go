// Package content builds the multimodal parts a chat message is made of.
package content

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

type Detail string

const (
	DetailAuto Detail = "auto"
	DetailLow  Detail = "low"
	DetailHigh Detail = "high"
)

// Part is one component of a message: plain text or an image reference.
// Image parts keep the source as given; local files additionally carry the
// encoded payload as a data URL in Data.
type Part struct {
	Kind   Kind   `json:"type"`
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`
	Data   string `json:"data,omitempty"`
	Detail Detail `json:"detail,omitempty"`
}

// Text wraps a plain string as a text part.
func Text(text string) Part {
	return Part{Kind: KindText, Text: text}
}

// Image builds an image part from a filesystem path or an HTTP(S) URL.
// Remote URLs pass through untouched; local files are read and embedded as a
// base64 data URL, so a missing or unreadable file fails here, before any
// request is attempted.
func Image(source string) (Part, error) {
	part := Part{Kind: KindImage, Source: source, Detail: DetailAuto}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return part, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return Part{}, fmt.Errorf("read image %s: %w", source, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(source))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	part.Data = fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	return part, nil
}

// WithDetail returns a copy of the part with the given image detail level.
func (p Part) WithDetail(detail Detail) Part {
	p.Detail = detail
	return p
}

// URL returns the value to send to the API: the embedded data URL for local
// images, the source as given otherwise.
func (p Part) URL() string {
	if p.Data != "" {
		return p.Data
	}
	return p.Source
}

// Summary renders the part as a short single-line string for tabular views.
func (p Part) Summary() string {
	switch p.Kind {
	case KindImage:
		return "[image " + p.Source + "]"
	default:
		return truncate(p.Text, 80)
	}
}

func (p Part) Validate() error {
	switch p.Kind {
	case KindText, KindImage:
		return nil
	default:
		return fmt.Errorf("unknown content part type %q", p.Kind)
	}
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
