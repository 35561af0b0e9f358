// Package cache provides a persistent cache for synthesized audio clips.
// Clips are keyed by a deterministic fingerprint of the synthesis request
// and stored in a count-bounded artifact store with oldest-first eviction.
package cache
