package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondCacheable writes the payload with a weak entity tag derived from
// the serialized body, and answers If-None-Match revalidation with 304.
// Used on the public note read path, where scanned QR links produce
// repeat fetches of the same record.
func RespondCacheable(ctx *gin.Context, status int, payload interface{}) {
	body, err := json.Marshal(payload)

	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	etag := weakETag(body)
	ctx.Header("ETag", etag)

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

// weakETag hashes the body and keeps the first half of the digest; the
// tag only ever needs to distinguish revisions of one note.
func weakETag(body []byte) string {
	sum := sha256.Sum256(body)

	return `W/"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, current string) bool {
	header = strings.TrimSpace(header)

	if header == "" {
		return false
	}

	if header == "*" {
		return true
	}

	want := stripWeak(current)

	for _, candidate := range strings.Split(header, ",") {
		if stripWeak(candidate) == want {
			return true
		}
	}

	return false
}

func stripWeak(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "W/")

	return tag
}
