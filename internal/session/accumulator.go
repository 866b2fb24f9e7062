package session

import (
	"strings"
	"sync"

	"github.com/Edwinswanith/multiaudio/internal/enricher"
)

// maxPreviousTurns caps how many past enrichment turns are replayed as
// context for the next one.
const maxPreviousTurns = 3

// Accumulator holds the per-session mutable state shared between the client
// and provider loops: the processing mode, the running transcript of final
// segments, and the recent enrichment turns.
type Accumulator struct {
	mu         sync.Mutex
	mode       enricher.Mode
	transcript strings.Builder
	turns      []enricher.Turn
}

func NewAccumulator() *Accumulator {
	return &Accumulator{mode: enricher.ModeBalanced}
}

// AppendFinal adds a finalized segment to the running transcript, separated
// from the previous segment by a single space.
func (a *Accumulator) AppendFinal(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.transcript.Len() > 0 {
		a.transcript.WriteByte(' ')
	}
	a.transcript.WriteString(text)
}

// Clear resets the running transcript and the recorded turns. The mode is
// kept.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript.Reset()
	a.turns = nil
}

func (a *Accumulator) SetMode(mode enricher.Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = mode
}

func (a *Accumulator) Mode() enricher.Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *Accumulator) Transcript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transcript.String()
}

// RecordTurn remembers a completed enrichment turn for continuity context.
// Only the most recent turns are kept.
func (a *Accumulator) RecordTurn(raw, cleaned string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.turns = append(a.turns, enricher.Turn{Raw: raw, Cleaned: cleaned})
	if len(a.turns) > maxPreviousTurns {
		a.turns = a.turns[len(a.turns)-maxPreviousTurns:]
	}
}

// RecentTurns returns a copy of the recorded turns, oldest first.
func (a *Accumulator) RecentTurns() []enricher.Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.turns) == 0 {
		return nil
	}
	out := make([]enricher.Turn, len(a.turns))
	copy(out, a.turns)
	return out
}
