// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns text into vectors (build and query time)
//   - IndexRepository: Persists and loads named index stores
//   - RecordSource: Reads exported table rows
//   - ConfigStore: Application configuration
//   - PromptStore: Planner and answer system prompts
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Planning and answer synthesis. Without it, ask reports a configuration error.
//   - Cache: Query embedding and result memoisation. Defaults to an unbounded map.
//   - Metrics: Counters and histograms. Defaults to a no-op recorder.
//   - SourceWatcher: Change notifications for exported files.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
