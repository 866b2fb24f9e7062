package session

import (
	"testing"

	"github.com/Edwinswanith/multiaudio/internal/enricher"
)

func TestAccumulator_AppendFinalJoinsWithSingleSpace(t *testing.T) {
	acc := NewAccumulator()

	acc.AppendFinal("hello world")
	acc.AppendFinal("how are you")

	if got := acc.Transcript(); got != "hello world how are you" {
		t.Errorf("transcript = %q", got)
	}
}

func TestAccumulator_ClearKeepsMode(t *testing.T) {
	acc := NewAccumulator()
	acc.SetMode(enricher.ModeStrict)
	acc.AppendFinal("something")
	acc.RecordTurn("raw", "cleaned")

	acc.Clear()

	if got := acc.Transcript(); got != "" {
		t.Errorf("transcript after clear = %q", got)
	}
	if turns := acc.RecentTurns(); turns != nil {
		t.Errorf("turns after clear = %v", turns)
	}
	if acc.Mode() != enricher.ModeStrict {
		t.Error("clear reset the processing mode")
	}
}

func TestAccumulator_DefaultModeIsBalanced(t *testing.T) {
	if NewAccumulator().Mode() != enricher.ModeBalanced {
		t.Error("new accumulator is not in balanced mode")
	}
}

func TestAccumulator_RecentTurnsKeepsLastThree(t *testing.T) {
	acc := NewAccumulator()
	acc.RecordTurn("a", "A")
	acc.RecordTurn("b", "B")
	acc.RecordTurn("c", "C")
	acc.RecordTurn("d", "D")

	turns := acc.RecentTurns()
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	if turns[0].Raw != "b" || turns[2].Raw != "d" {
		t.Errorf("unexpected turn window: %v", turns)
	}
}
