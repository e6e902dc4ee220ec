package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes body as JSON with a strong ETag and answers
// If-None-Match revalidations with 304.
func RespondJSONWithETag(c *gin.Context, status int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		RespondInternal(c, "could not encode response", err, false)
		return
	}

	sum := sha256.Sum256(raw)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	c.Header("ETag", etag)

	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(status, "application/json; charset=utf-8", raw)
}
