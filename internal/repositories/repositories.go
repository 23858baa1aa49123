package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/luoyiti/web-video-player/internal/models"
)

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// encodeTags serializes tags for the tags column, writing "[]" for nil.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

// decodeTags parses the tags column; empty or malformed values yield an empty list.
func decodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return models.DecodeTags([]byte(raw))
}
