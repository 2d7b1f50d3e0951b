package domain

// DocumentChunk is the unit of indexing: a bounded, overlapping slice of a
// policy document's normalized text.
type DocumentChunk struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	DocID      string `json:"doc_id"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

// ScoredCandidate is a retrieval hit: chunk payload plus a similarity score.
// Candidates are request-scoped and never persisted.
type ScoredCandidate struct {
	Text       string  `json:"text"`
	DocID      string  `json:"doc_id"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	PolicyName string  `json:"policy_name,omitempty"`
	Severity   string  `json:"severity,omitempty"`
	Score      float64 `json:"score"`
}

type Answer struct {
	Text    string            `json:"text"`
	Sources []ScoredCandidate `json:"sources"`
}

// QueryOptions tune the retrieval side of a query or evaluation.
type QueryOptions struct {
	TopK   int
	MaxCtx int
	Rerank bool
}
