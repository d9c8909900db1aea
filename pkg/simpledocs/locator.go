package simpledocs

import (
	"fmt"
	"strings"
)

// StorageKey derives the object-storage key for a document version:
//
//	tenant/{tenant}/user/{owner}/{documentID}/v{version}/{name}
//
// The key is deterministic from its inputs, so it never needs to be
// persisted anywhere but on the document itself.
func StorageKey(tenant, owner, documentID string, version int, name string) string {
	return fmt.Sprintf("tenant/%s/user/%s/%s/v%d/%s",
		sanitizePathComponent(tenant),
		sanitizePathComponent(owner),
		documentID,
		version,
		sanitizeFilename(name),
	)
}

// sanitizePathComponent keeps path components free of separators and
// traversal sequences.
func sanitizePathComponent(component string) string {
	component = strings.ReplaceAll(component, "/", "_")
	component = strings.ReplaceAll(component, "\\", "_")
	component = strings.ReplaceAll(component, "..", "_")
	if component == "" {
		return "default"
	}
	return component
}

// sanitizeFilename keeps the original extension but strips anything that
// could escape the key prefix.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return "unnamed"
	}
	return name
}
