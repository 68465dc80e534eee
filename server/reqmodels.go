package server

// These are the models exchanged with compile service clients; they are
// deliberately distinct from the internal codegen.Stage-keyed map the
// opengl back end produces.

// CompileRequest is the body of POST /v1/compile.
type CompileRequest struct {
	Source string `json:"source"`
	API    string `json:"api"`
}

// CompileResponse maps pipeline stage name to generated shader text, for
// every stage that had an entry function.
type CompileResponse struct {
	Stages map[string]string `json:"stages"`
}

// HistoryEntryModel is one row of GET /v1/history.
type HistoryEntryModel struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	SourceHash string `json:"source_hash"`
	API        string `json:"api"`
	StageCount int    `json:"stage_count"`
}

// HistoryResponse is the body of GET /v1/history.
type HistoryResponse struct {
	Entries []HistoryEntryModel `json:"entries"`
}
