package note

import (
	"errors"
	"time"
)

// Attachment is an optional file stored alongside a note. Name and Data
// travel as a unit: a note either has both or neither.
type Attachment struct {
	FileName string `json:"fileName"`
	Data     []byte `json:"-"`
}

type Note struct {
	ID         int64       `json:"id"`
	Content    string      `json:"content"`
	Subject    string      `json:"subject"`
	QRCodeData string      `json:"qrCodeData"`
	UserID     int64       `json:"userId"`
	CreatedAt  time.Time   `json:"createdAt"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

func (n *Note) HasAttachment() bool {
	return n.Attachment != nil
}

var (
	ErrNotFound  = errors.New("note not found")
	ErrForbidden = errors.New("note belongs to another user")
)

type CreateNoteRequest struct {
	Content    string
	Subject    string
	UserID     int64
	Attachment *Attachment
}

type UpdateContentRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

type UpdateQrRequest struct {
	QRCodeData string `json:"qrCodeData" binding:"required"`
}
