package handlers

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// RespondJSONWithETag writes the payload as JSON under a strong ETag so
// polling clients can skip unchanged listings with If-None-Match.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)

	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	etag := buildETag(body)

	ctx.Header("ETag", etag)

	if requestMatchesETag(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, jsonContentType, body)
}

func buildETag(body []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(body)

	return fmt.Sprintf(`"%x-%x"`, len(body), h.Sum64())
}

// requestMatchesETag runs the If-None-Match comparison, weak validators
// and the * wildcard included.
func requestMatchesETag(header, etag string) bool {
	header = strings.TrimSpace(header)

	if header == "" {
		return false
	}

	if header == "*" {
		return true
	}

	want := trimWeakPrefix(etag)

	for _, candidate := range strings.Split(header, ",") {
		if trimWeakPrefix(candidate) == want {
			return true
		}
	}

	return false
}

func trimWeakPrefix(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "W/"))
}
