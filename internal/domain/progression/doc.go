// Package progression implements the learning progression engine: it turns
// the raw attempt events of one evaluation cycle into a mastery score,
// decides whether the user advances, reviews or repeats, maintains the
// spaced-repetition schedule, and selects the next subtopic to present.
//
// The engine is a pure computation module behind the persistence boundary:
// it holds no resources, performs no I/O and computes on immutable
// snapshots, returning new state for the caller to persist.
package progression
