package types

// RequirementItem is a single RFP clause/question imported from a
// spreadsheet that needs an answer. It is owned by the external store;
// the orchestrator treats it as immutable input and references it by ID.
type RequirementItem struct {
	ID              int64  `json:"id"`
	Category        string `json:"category"`
	RequirementText string `json:"requirement"`
	RFPName         string `json:"rfp_name,omitempty"`
	UploadedBy      string `json:"uploaded_by,omitempty"`
	FinalResponse   string `json:"final_response,omitempty"`
}

// SimilarityMatch is a previously answered requirement judged semantically
// close to the current query. SourceRequirementID is a weak reference for
// lookup only, never ownership. A ranked set is produced fresh per
// retrieval call and is not persisted by the orchestrator itself.
type SimilarityMatch struct {
	SourceRequirementID    int64   `json:"source_requirement_id"`
	Score                  float64 `json:"score"` // [0,1], higher = more similar
	MatchedRequirementText string  `json:"matched_requirement"`
	MatchedResponseText    string  `json:"matched_response"`
	ReferenceCitation      string  `json:"reference,omitempty"`
}
