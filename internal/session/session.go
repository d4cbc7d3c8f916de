// Package session holds the per-session working state: the currently
// extracted document, saved context snapshots, the generation counter and
// the admission gate timers. Nothing here survives a process restart.
package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"questionforge/internal/gate"
)

// SavedContext is a named in-session snapshot of previously extracted text.
type SavedContext struct {
	Key       string `json:"key"`
	File      string `json:"file"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Size      string `json:"size"`
}

// State is the mutable state owned by one interactive session. Methods are
// safe for concurrent use; time-dependent operations take the current time
// explicitly so tests can drive them with synthetic clocks.
type State struct {
	mu sync.Mutex

	currentFile string
	currentText string

	saved map[string]SavedContext

	generationCount int

	// Last successful generation, kept so it can be re-downloaded.
	lastOutput     string
	lastOutputName string

	gate gate.State
}

// NewState returns an empty session state.
func NewState() *State {
	return &State{saved: make(map[string]SavedContext)}
}

// SetDocument replaces the current working document. The previous document
// is superseded, not mutated.
func (s *State) SetDocument(fileName, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFile = fileName
	s.currentText = text
}

// Document returns the current file name and working text.
func (s *State) Document() (fileName, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFile, s.currentText
}

// ErrNothingToSave is returned when the working text is empty or whitespace.
var ErrNothingToSave = fmt.Errorf("no content to save")

// SaveContext snapshots the current working text under a key derived from
// the file name and the wall clock. The nanosecond-resolution timestamp
// keeps repeated saves of the same file from colliding.
func (s *State) SaveContext(now time.Time) (SavedContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.currentText) == "" {
		return SavedContext{}, ErrNothingToSave
	}

	saved := SavedContext{
		Key:       fmt.Sprintf("%s_%s", s.currentFile, now.Format("15:04:05.000000000")),
		File:      s.currentFile,
		Content:   s.currentText,
		Timestamp: now.Format("2006-01-02 15:04:05"),
		Size:      sizeLabel(len(s.currentText)),
	}
	s.saved[saved.Key] = saved
	return saved, nil
}

// LoadContext replaces the working text and file name with a saved entry's.
// The saved entry itself is kept.
func (s *State) LoadContext(key string) (SavedContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, ok := s.saved[key]
	if !ok {
		return SavedContext{}, false
	}
	s.currentFile = saved.File
	s.currentText = saved.Content
	return saved, true
}

// DeleteContext removes one saved entry. Deleting an absent key is a no-op.
func (s *State) DeleteContext(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, key)
}

// ClearAll empties the saved contexts and resets the working text. The
// generation counter is left untouched.
func (s *State) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = make(map[string]SavedContext)
	s.currentFile = ""
	s.currentText = ""
}

// SavedContexts lists the saved entries ordered by key.
func (s *State) SavedContexts() []SavedContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SavedContext, 0, len(s.saved))
	for _, saved := range s.saved {
		out = append(out, saved)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// RecordGeneration stores a successful generation result and increments the
// counter. Called exactly once per successful generation.
func (s *State) RecordGeneration(output, downloadName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generationCount++
	s.lastOutput = output
	s.lastOutputName = downloadName
	return s.generationCount
}

// GenerationCount returns how many generations have succeeded this session.
func (s *State) GenerationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generationCount
}

// LastOutput returns the most recent generation result and its download
// file name, or ok=false if nothing was generated yet.
func (s *State) LastOutput() (output, downloadName string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastOutput == "" {
		return "", "", false
	}
	return s.lastOutput, s.lastOutputName, true
}

// TryAdmit checks the admission gate at time now and, when admitted, records
// the request under the same lock, so two interleaved requests from one
// session cannot both pass inside the spacing window. Callers dispatch the
// external call immediately after an Admitted decision.
func (s *State) TryAdmit(now time.Time) gate.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	decision := s.gate.Check(now)
	if decision.Status == gate.Admitted {
		s.gate.RecordRequest(now)
	}
	return decision
}

// RecordLockout starts the quota lockout at time now.
func (s *State) RecordLockout(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate.RecordLockout(now)
}

func sizeLabel(chars int) string {
	return fmt.Sprintf("%.1f KB", float64(chars)/1024)
}
