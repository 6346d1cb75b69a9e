package relay

// Package relay is the only path by which background work may touch UI state.
// A Relay runs posted mutations on the UI goroutine, one at a time, in the
// order they were posted. Posting never blocks the caller.
