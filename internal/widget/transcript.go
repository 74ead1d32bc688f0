package widget

import "time"

// Author identifies who produced a turn.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Turn is one rendered message in the transcript. Immutable once created.
type Turn struct {
	Text   string
	Author Author
	At     time.Time
}

// Transcript is the ordered, append-only list of turns currently displayed.
// It is cleared, not persisted, when the session ends.
type Transcript struct {
	turns []Turn
}

// Append adds a turn at the end.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the current turns.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.turns = nil
}
