// Package stats derives live statistics from a history snapshot.
//
// Everything here is recomputed from scratch on each call; nothing is
// accumulated between frames, so calling any function twice on the same
// snapshot yields the same result.
package stats
