package domain

// KnowledgeDocument is one ingested document in a tenant's knowledge index.
type KnowledgeDocument struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// Text is the document content as ingested.
	Text string `json:"text"`
	// Metadata carries ingestion context (e.g. integration_type).
	Metadata map[string]string `json:"metadata,omitempty"`
	// Embedding is the vector representation used for retrieval.
	Embedding []float32 `json:"embedding"`
}

// KnowledgeHit is a retrieval result.
type KnowledgeHit struct {
	// Document is the matched document.
	Document KnowledgeDocument
	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
