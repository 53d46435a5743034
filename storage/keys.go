package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SanitizeFileName reduces a client-supplied file name to its last path
// component, so a name can never escape the project's key prefix. Embedded
// dots are left alone; with no separators remaining they cannot traverse.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSpace(name)
}

// BuildObjectKey derives the storage key for an upload. The uuid segment
// keeps bucket keys unique even when a file name is reused after a delete
// or rejected upload, so a stale cached URL can never resolve to new bytes.
func BuildObjectKey(projectID primitive.ObjectID, fileName string) string {
	return fmt.Sprintf("projects/%s/%s-%s", projectID.Hex(), uuid.New().String(), SanitizeFileName(fileName))
}
