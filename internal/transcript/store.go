// Package transcript holds the process-wide transcript segment store.
// Completion callbacks from the transcription client arrive in arbitrary
// order, so every update is keyed by segment id and idempotent.
package transcript

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FailedText is the sentinel stored when transcription exhausts its retries.
const FailedText = "[transcription failed]"

// Segment is one transcribed (or in-flight) audio segment.
type Segment struct {
	ID           string
	Timestamp    time.Time
	Text         string
	IsProcessing bool
}

// Store maps segment id to transcript state. Safe for concurrent use; one
// instance per process.
type Store struct {
	mu       sync.RWMutex
	segments map[string]*Segment
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{segments: make(map[string]*Segment)}
}

// Begin registers a segment handed off for transcription. Re-registering an
// existing id is a no-op so late duplicate handoffs cannot clobber results.
func (s *Store) Begin(id string, timestamp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.segments[id]; ok {
		return
	}
	s.segments[id] = &Segment{ID: id, Timestamp: timestamp, IsProcessing: true}
}

// Complete records the final text for a segment. The processing -> done
// transition happens exactly once; later completions for the same id are
// ignored. Returns false for unknown or already-completed segments.
func (s *Store) Complete(id, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok || !seg.IsProcessing {
		return false
	}
	seg.Text = text
	seg.IsProcessing = false
	return true
}

// Fail marks a segment as failed with the sentinel text.
func (s *Store) Fail(id string) bool {
	return s.Complete(id, FailedText)
}

// Get returns a copy of the segment, if present.
func (s *Store) Get(id string) (Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seg, ok := s.segments[id]
	if !ok {
		return Segment{}, false
	}
	return *seg, true
}

// All returns copies of every segment sorted by timestamp ascending.
func (s *Store) All() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Segment, 0, len(s.segments))
	for _, seg := range s.segments {
		out = append(out, *seg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Stale returns segments still processing after maxAge, oldest first. The
// store never auto-fails them; display-layer cleanup decides what to do.
func (s *Store) Stale(maxAge time.Duration, now time.Time) []Segment {
	var out []Segment
	for _, seg := range s.All() {
		if seg.IsProcessing && now.Sub(seg.Timestamp) >= maxAge {
			out = append(out, seg)
		}
	}
	return out
}

// Len returns the number of stored segments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

// Clear removes all segments.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = make(map[string]*Segment)
}

// Export renders the store as one line per segment, sorted by timestamp
// ascending: RFC3339Nano timestamp, id, and the quoted text, tab separated.
// Still-processing segments export with empty text.
func (s *Store) Export() string {
	var b strings.Builder
	for _, seg := range s.All() {
		fmt.Fprintf(&b, "%s\t%s\t%s\n",
			seg.Timestamp.UTC().Format(time.RFC3339Nano), seg.ID, strconv.Quote(seg.Text))
	}
	return b.String()
}

// Parse rebuilds a store from Export output. Parsed segments are complete.
func Parse(exported string) (*Store, error) {
	store := NewStore()
	scanner := bufio.NewScanner(strings.NewReader(exported))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: want 3 tab-separated fields, got %d", line, len(parts))
		}
		ts, err := time.Parse(time.RFC3339Nano, parts[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad timestamp: %w", line, err)
		}
		text, err := strconv.Unquote(parts[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad text field: %w", line, err)
		}
		store.segments[parts[1]] = &Segment{ID: parts[1], Timestamp: ts, Text: text}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return store, nil
}
