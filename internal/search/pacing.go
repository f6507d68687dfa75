// File: internal/search/pacing.go
package search

import "time"

// DefaultInputSelector is the query box on the search engine's home page.
const DefaultInputSelector = "#sb_form_q"

// Pacing holds the fixed waits of one search. The pauses and scroll
// durations shape how the visit looks to the site and are not tuning knobs
// for speed.
type Pacing struct {
	// NavigationTimeout bounds loading the home page until network idle.
	NavigationTimeout time.Duration
	// ElementTimeout bounds waiting for the query input to appear.
	ElementTimeout time.Duration
	// PreSubmitPause is the hesitation between typing and pressing Enter.
	PreSubmitPause time.Duration
	// SubmitTimeout bounds the results navigation after Enter.
	SubmitTimeout time.Duration
	// ReadingPause is spent on the results before scrolling.
	ReadingPause time.Duration
	// ScrollDownDuration is how long the eased scroll to the bottom takes.
	ScrollDownDuration time.Duration
	// BottomPause is spent at the bottom of the results.
	BottomPause time.Duration
	// ScrollUpDuration is how long the eased scroll back to the top takes.
	ScrollUpDuration time.Duration
}

// DefaultPacing returns the production timings.
func DefaultPacing() Pacing {
	return Pacing{
		NavigationTimeout:  30 * time.Second,
		ElementTimeout:     10 * time.Second,
		PreSubmitPause:     2 * time.Second,
		SubmitTimeout:      15 * time.Second,
		ReadingPause:       10 * time.Second,
		ScrollDownDuration: 20 * time.Second,
		BottomPause:        2 * time.Second,
		ScrollUpDuration:   3 * time.Second,
	}
}
