package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a run ID with a timestamp prefix, so IDs sort by
// creation time
func GenerateRunID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "run-" + timestamp + "-" + suffix
}

// IsRunID reports whether id has the shape produced by GenerateRunID
func IsRunID(id string) bool {
	parts := strings.Split(id, "-")
	return len(parts) == 4 && parts[0] == "run" && len(parts[1]) == 8 && len(parts[2]) == 6 && len(parts[3]) == 12
}
