// Package flat provides an exact, in-memory vector index.
// It implements the driven.VectorIndex interface by scanning every entry,
// which is fast enough for per-student LMS exports (thousands of chunks).
package flat
