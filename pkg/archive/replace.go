package archive

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// tempPath returns a unique sibling path for building a replacement archive.
// Concurrent rewrites never collide: the name carries a nanosecond timestamp
// plus a random fragment, and lives in the same directory as the target so
// the final rename stays on one filesystem.
func tempPath(path string) string {
	return fmt.Sprintf("%s.tmp.%d.%s", path, time.Now().UnixNano(), uuid.New().String()[:8])
}
