package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

type NoteCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        int64     `json:"id"`
}

func EncodeNoteCursor(createdAt time.Time, id int64) (string, error) {
	b, err := json.Marshal(NoteCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeNoteCursor(cursor string) (NoteCursor, error) {
	if cursor == "" {
		return NoteCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return NoteCursor{}, err
	}

	var c NoteCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return NoteCursor{}, err
	}
	if c.ID == 0 || c.CreatedAt.IsZero() {
		return NoteCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
