// File: internal/terms/cursor.go
package terms

import (
	"github.com/xkilldash9x/searchpilot/internal/errs"
)

// NextTerm picks terms[counter mod len(terms)] and returns the counter to use
// on the following draw. The counter is a uint64 so it cannot wrap within any
// realistic run.
func NextTerm(terms []string, counter uint64) (string, uint64, error) {
	if len(terms) == 0 {
		return "", counter, &errs.EmptyTermListError{}
	}
	return terms[counter%uint64(len(terms))], counter + 1, nil
}

// Cursor rotates through a fixed term list. The zero value starts at the
// first term. A Cursor is owned by a single goroutine.
type Cursor struct {
	terms   []string
	counter uint64
}

// NewCursor returns a cursor over terms. The slice is copied so later
// mutations by the caller do not leak into a running schedule.
func NewCursor(terms []string) (*Cursor, error) {
	if len(terms) == 0 {
		return nil, &errs.EmptyTermListError{}
	}
	owned := make([]string, len(terms))
	copy(owned, terms)
	return &Cursor{terms: owned}, nil
}

// Next returns the next term and advances the cursor.
func (c *Cursor) Next() (string, error) {
	term, next, err := NextTerm(c.terms, c.counter)
	if err != nil {
		return "", err
	}
	c.counter = next
	return term, nil
}

// Drawn reports how many terms have been handed out so far.
func (c *Cursor) Drawn() uint64 { return c.counter }

// Len reports the size of the underlying list.
func (c *Cursor) Len() int { return len(c.terms) }
