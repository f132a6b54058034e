package ast

// RegistryEntry maps a WhenBlock guard to a target pipeline id. Entries
// are matched in declaration order; the first match wins (§4.7).
type RegistryEntry struct {
	When       WhenBlock
	PipelineID string
}

// Registry is the top-level event-to-pipeline dispatcher.
type Registry struct {
	Entries []RegistryEntry
	// DefaultPipelineID, when set, is used when no entry matches.
	DefaultPipelineID string
	// DefaultReject, when true and DefaultPipelineID is empty, makes an
	// unmatched event yield a deny decision rather than an implicit approval.
	DefaultReject bool
}

// Imports lists the artifact paths a document references, resolved by the
// import resolver (C4) against a Repository.
type Imports struct {
	Rules     []string
	Rulesets  []string
	Pipelines []string
	Templates []string
}
