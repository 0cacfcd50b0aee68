package utils

import (
	"fmt"
	"strings"
)

// LinkBuilder produces the shareable view URL encoded into a note's QR
// payload. The stored value is opaque to the rest of the system.
type LinkBuilder struct {
	baseURL string
}

func NewLinkBuilder(baseURL string) *LinkBuilder {
	return &LinkBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *LinkBuilder) NoteLink(noteID int64) string {
	return fmt.Sprintf("%s/notes/view/%d", b.baseURL, noteID)
}
