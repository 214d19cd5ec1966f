// Package file implements the per-tenant knowledge store on the local
// filesystem.
//
// Each tenant owns one JSON index file holding documents and their
// embeddings. Inserts are write-through: the file is rewritten and
// atomically renamed before Insert returns, so a crash leaves either
// the previous index or the new one, never a torn file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.KnowledgeStore = (*Store)(nil)

// Store hands out one Index per tenant, creating the backing file
// lazily on first access.
type Store struct {
	root     string
	embedder driven.EmbeddingService

	mu      sync.Mutex
	indexes map[string]*Index
}

// NewStore creates a knowledge store rooted at dataDir. The embedder
// may be nil; indexes then reject Insert and Search with
// domain.ErrEmbeddingUnavailable but still load and persist.
func NewStore(dataDir string, embedder driven.EmbeddingService) *Store {
	return &Store{
		root:     dataDir,
		embedder: embedder,
		indexes:  make(map[string]*Index),
	}
}

// EnsureIndex loads the tenant's index, creating and persisting an
// empty one if absent. Idempotent; an existing index is never
// overwritten. Tenant ids become directory names, so path-unsafe ids
// are rejected.
func (s *Store) EnsureIndex(_ context.Context, tenant domain.Tenant) (driven.KnowledgeIndex, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := tenant.OrgID + "/" + tenant.UserID
	if idx, ok := s.indexes[key]; ok {
		return idx, nil
	}

	path := filepath.Join(s.root, "rag",
		"org_"+tenant.OrgID, "user_"+tenant.UserID, "index.json")
	idx := &Index{path: path, embedder: s.embedder}
	if err := idx.load(); err != nil {
		return nil, err
	}

	s.indexes[key] = idx
	return idx, nil
}

// indexFile is the on-disk layout.
type indexFile struct {
	Documents []domain.KnowledgeDocument `json:"documents"`
}

// Index is one tenant's document set. Append-only: documents are
// inserted, never updated or removed.
type Index struct {
	path     string
	embedder driven.EmbeddingService

	mu   sync.Mutex
	docs []domain.KnowledgeDocument
}

// load reads the index file, creating an empty one when absent.
func (i *Index) load() error {
	raw, err := os.ReadFile(i.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(i.path), 0700); err != nil {
			return fmt.Errorf("creating index directory: %w", err)
		}
		return i.persistLocked()
	}
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	var file indexFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing index %s: %w", i.path, err)
	}
	i.docs = file.Documents
	return nil
}

// Insert embeds the text, appends the document and persists before
// returning.
func (i *Index) Insert(ctx context.Context, text string, metadata map[string]string) error {
	if i.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	embedding, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs = append(i.docs, domain.KnowledgeDocument{
		ID:        uuid.New().String(),
		Text:      text,
		Metadata:  metadata,
		Embedding: embedding,
	})
	if err := i.persistLocked(); err != nil {
		// The in-memory append must not outlive a failed write.
		i.docs = i.docs[:len(i.docs)-1]
		return err
	}
	return nil
}

// Search embeds the query and returns the k most similar documents by
// cosine similarity, best first.
func (i *Index) Search(ctx context.Context, query string, k int) ([]domain.KnowledgeHit, error) {
	if i.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	queryVec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	hits := make([]domain.KnowledgeHit, 0, len(i.docs))
	for _, doc := range i.docs {
		hits = append(hits, domain.KnowledgeHit{
			Document:   doc,
			Similarity: cosineSimilarity(queryVec, doc.Embedding),
		})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of ingested documents.
func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.docs)
}

// Persist flushes the index to disk.
func (i *Index) Persist() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.persistLocked()
}

// persistLocked writes the index through a temp file and atomic
// rename. Callers hold i.mu.
func (i *Index) persistLocked() error {
	raw, err := json.MarshalIndent(indexFile{Documents: i.docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("serialise index: %w", err)
	}

	tmp := i.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, i.path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched or zero-length vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for idx := range a {
		dot += float64(a[idx]) * float64(b[idx])
		normA += float64(a[idx]) * float64(a[idx])
		normB += float64(b[idx]) * float64(b[idx])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
