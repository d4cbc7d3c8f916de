package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"questionforge/internal/gate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewState()
	s.SetDocument("notes.txt", "chapter one content")

	saved, err := s.SaveContext(now)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", saved.File)
	assert.Equal(t, "chapter one content", saved.Content)
	assert.Equal(t, "2025-06-01 09:30:00", saved.Timestamp)

	// replace the working document, then load the snapshot back
	s.SetDocument("other.pdf", "something else")
	loaded, ok := s.LoadContext(saved.Key)
	require.True(t, ok)
	assert.Equal(t, saved.Content, loaded.Content)

	file, text := s.Document()
	assert.Equal(t, "notes.txt", file)
	assert.Equal(t, "chapter one content", text)

	// loading does not consume the entry
	assert.Len(t, s.SavedContexts(), 1)
}

func TestSaveRejectsWhitespaceOnlyText(t *testing.T) {
	s := NewState()
	s.SetDocument("blank.txt", "   \n\t  ")
	_, err := s.SaveContext(now)
	assert.ErrorIs(t, err, ErrNothingToSave)
	assert.Empty(t, s.SavedContexts())
}

func TestRepeatedSavesOfSameFileGetDistinctKeys(t *testing.T) {
	s := NewState()
	s.SetDocument("notes.txt", "content")

	first, err := s.SaveContext(now)
	require.NoError(t, err)
	second, err := s.SaveContext(now.Add(time.Nanosecond))
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.Len(t, s.SavedContexts(), 2)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := NewState()
	s.SetDocument("notes.txt", "content")
	saved, err := s.SaveContext(now)
	require.NoError(t, err)

	s.DeleteContext("no-such-key")
	assert.Len(t, s.SavedContexts(), 1)

	s.DeleteContext(saved.Key)
	s.DeleteContext(saved.Key)
	assert.Empty(t, s.SavedContexts())
}

func TestClearAllKeepsGenerationCounter(t *testing.T) {
	s := NewState()
	s.SetDocument("notes.txt", "content")
	_, err := s.SaveContext(now)
	require.NoError(t, err)
	s.RecordGeneration("Q1. ...", "questions_notes.txt_20250601_093000.txt")
	s.RecordGeneration("Q1. ...", "questions_notes.txt_20250601_093005.txt")

	s.ClearAll()

	assert.Empty(t, s.SavedContexts())
	_, text := s.Document()
	assert.Empty(t, text)
	assert.Equal(t, 2, s.GenerationCount())
}

func TestRecordGenerationStoresLastOutput(t *testing.T) {
	s := NewState()
	_, _, ok := s.LastOutput()
	assert.False(t, ok)

	count := s.RecordGeneration("generated questions", "questions_a.txt")
	assert.Equal(t, 1, count)

	output, name, ok := s.LastOutput()
	require.True(t, ok)
	assert.Equal(t, "generated questions", output)
	assert.Equal(t, "questions_a.txt", name)
}

func TestTryAdmitAdmitsThenRefusesInsideSpacing(t *testing.T) {
	s := NewState()

	first := s.TryAdmit(now)
	assert.Equal(t, gate.Admitted, first.Status)

	// the admitting call already recorded the dispatch
	second := s.TryAdmit(now.Add(time.Second))
	assert.Equal(t, gate.Refused, second.Status)
	assert.Equal(t, 2, second.WaitSeconds)

	third := s.TryAdmit(now.Add(gate.SpacingInterval))
	assert.Equal(t, gate.Admitted, third.Status)
}

func TestTryAdmitAdmitsAtMostOneConcurrentRequest(t *testing.T) {
	s := NewState()
	_ = s.TryAdmit(now)

	// two requests racing at the same instant after the spacing window
	at := now.Add(gate.SpacingInterval)
	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryAdmit(at).Status == gate.Admitted {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted)
}

func TestManagerReturnsSameStateForSameSession(t *testing.T) {
	m := NewManager(time.Hour)

	a := m.Get("sid-1")
	a.SetDocument("a.txt", "hello")

	again := m.Get("sid-1")
	file, _ := again.Document()
	assert.Equal(t, "a.txt", file)

	other := m.Get("sid-2")
	file, _ = other.Document()
	assert.Empty(t, file)
}
