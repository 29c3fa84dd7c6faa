package session

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// segmentIDs generates ordered segment identifiers within one session.
type segmentIDs struct {
	counter uint64
}

func (g *segmentIDs) next(sessionID string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-seg-%d", sessionID, n)
}

// newSessionID returns a fresh session identifier.
func newSessionID() string {
	return uuid.NewString()
}
