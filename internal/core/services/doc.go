// Package services holds the retrieval core: the index builder, the
// catalog of loaded stores, the hybrid retriever, the query planner, the
// answer synthesizer and the assistant that chains them.
//
// Services depend only on ports; adapters are wired in cmd/canvai.
package services
