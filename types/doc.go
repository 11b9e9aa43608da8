// Package types defines the shared data model and error taxonomy used
// across the response generation orchestrator: requirement items,
// similarity matches, provider results, generation outcomes and batch
// job state.
package types
