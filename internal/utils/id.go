package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns a random identifier for a registered session.
func NewSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	// random source unavailable
	return "s" + strconv.FormatInt(time.Now().UnixNano(), 36)
}

// ShortTag returns n hex characters usable in generated nicknames.
func ShortTag(n int) string {
	id := uuid.New()
	tag := strings.ReplaceAll(id.String(), "-", "")
	if n <= 0 || n > len(tag) {
		return tag
	}
	return tag[:n]
}
