package types

// ProviderID identifies an external language-model backend.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderDeepSeek  ProviderID = "deepseek"
)

// ProviderSelection is the caller's choice of generation backend: a single
// provider, or SelectionMoA which runs every registered provider and
// synthesizes one final answer from the candidates.
type ProviderSelection string

const (
	SelectionOpenAI    ProviderSelection = "openai"
	SelectionAnthropic ProviderSelection = "anthropic"
	SelectionDeepSeek  ProviderSelection = "deepseek"
	SelectionMoA       ProviderSelection = "moa"
)

// Valid reports whether the selection is one of the known values.
func (s ProviderSelection) Valid() bool {
	switch s {
	case SelectionOpenAI, SelectionAnthropic, SelectionDeepSeek, SelectionMoA:
		return true
	}
	return false
}

// ResultStatus is the outcome of a single provider invocation.
type ResultStatus string

const (
	ResultOK     ResultStatus = "ok"
	ResultFailed ResultStatus = "failed"
)

// ProviderResult records one provider invocation for one item. Exactly one
// is produced per provider invoked per item, in invocation order.
type ProviderResult struct {
	ProviderID ProviderID   `json:"provider_id"`
	AnswerText string       `json:"answer,omitempty"`
	LatencyMs  int64        `json:"latency_ms"`
	Status     ResultStatus `json:"status"`
	ErrorKind  ErrorCode    `json:"error_kind,omitempty"`
}

// ItemStatus is the terminal status of one requirement within a batch.
type ItemStatus string

const (
	ItemSucceeded        ItemStatus = "succeeded"
	ItemFailed           ItemStatus = "failed"
	ItemSkippedCancelled ItemStatus = "skipped_cancelled"
)

// GenerationOutcome is the per-item result handed to the result store.
// ContributingProviderResults preserves invocation order, including failed
// invocations.
type GenerationOutcome struct {
	RequirementID               int64            `json:"requirement_id"`
	FinalAnswerText             string           `json:"final_answer,omitempty"`
	ContributingProviderResults []ProviderResult `json:"contributing_providers"`
	SynthesisUsed               bool             `json:"synthesis_used"`
	Status                      ItemStatus       `json:"status"`
	ErrorKind                   ErrorCode        `json:"error_kind,omitempty"`
}

// JobState is the lifecycle state of a batch job.
// Transitions: pending → running → {completed | cancelled | failed}.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobCancelled JobState = "cancelled"
	JobFailed    JobState = "failed"
)

// Terminal reports whether the state is one of the terminal states.
func (s JobState) Terminal() bool {
	switch s {
	case JobCompleted, JobCancelled, JobFailed:
		return true
	}
	return false
}

// ItemBreakdown counts per-item outcomes of a batch. Partial success is the
// expected common case when calling multiple external providers, so batch
// completion reports this breakdown rather than a single pass/fail verdict.
type ItemBreakdown struct {
	Succeeded        int `json:"succeeded"`
	Failed           int `json:"failed"`
	SkippedCancelled int `json:"skipped_cancelled"`
}

// JobProgress is a consistent snapshot of a batch job, safe to poll at any
// rate. ItemsProcessed ≤ ItemsTotal always holds, and ItemsProcessed is
// monotonically non-decreasing across snapshots.
type JobProgress struct {
	JobID          string        `json:"job_id"`
	State          JobState      `json:"status"`
	ItemsTotal     int           `json:"items_total"`
	ItemsProcessed int           `json:"items_processed"`
	CurrentStage   string        `json:"current_stage,omitempty"`
	Breakdown      ItemBreakdown `json:"breakdown"`
}
