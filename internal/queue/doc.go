// Package queue orders utterances waiting for synthesis and playback.
// User-initiated speech jumps ahead of queued assistant replies.
package queue
