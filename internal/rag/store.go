package rag

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwego/eino/schema"

	"ragtex/internal/types"
)

// Metadata keys carried by every chunk document.
const (
	MetaPath    = "path"
	MetaChunkID = "chunk_id"
)

// VectorStore stores chunk documents with their embeddings and returns the
// nearest ones to a query vector.
type VectorStore interface {
	// Upsert stores docs[i] with vectors[i]. An existing ID is replaced.
	Upsert(ctx context.Context, docs []*schema.Document, vectors [][]float64) error
	// Search returns up to k documents ordered by descending similarity,
	// each carrying its score.
	Search(ctx context.Context, vector []float64, k int) ([]*schema.Document, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// OpenStore returns a BoltStore when cfg.StorePath is set and a MemoryStore
// otherwise.
func OpenStore(cfg *types.Config) (VectorStore, error) {
	if cfg == nil {
		return nil, types.NewAppError(types.ErrConfig, "config is nil", nil)
	}
	if cfg.StorePath == "" {
		return NewMemoryStore(), nil
	}
	return OpenBoltStore(cfg.StorePath, cfg.Collection)
}

// ChunkDocument builds the document for chunk chunkID of path. Its ID is
// "path:chunkID".
func ChunkDocument(path string, chunkID int, content string) *schema.Document {
	return &schema.Document{
		ID:      fmt.Sprintf("%s:%d", path, chunkID),
		Content: content,
		MetaData: map[string]any{
			MetaPath:    path,
			MetaChunkID: chunkID,
		},
	}
}

// DocumentSource returns the path and chunk id recorded in doc's metadata.
func DocumentSource(doc *schema.Document) (string, int) {
	path, _ := doc.MetaData[MetaPath].(string)
	// JSON round trips turn the chunk id into a float64
	var chunkID int
	switch v := doc.MetaData[MetaChunkID].(type) {
	case int:
		chunkID = v
	case int64:
		chunkID = int(v)
	case float64:
		chunkID = int(v)
	}
	return path, chunkID
}

func checkUpsert(docs []*schema.Document, vectors [][]float64) error {
	if len(docs) != len(vectors) {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "document and vector counts differ",
			fmt.Sprintf("%d documents, %d vectors", len(docs), len(vectors)), nil)
	}
	for _, doc := range docs {
		if doc == nil || doc.ID == "" {
			return types.NewAppError(types.ErrInvalidInput, "document without ID", nil)
		}
	}
	return nil
}

type scored struct {
	doc   *schema.Document
	score float64
}

// topK sorts by descending score, breaking ties by ID, and returns the first
// k as score-carrying copies.
func topK(hits []scored, k int) []*schema.Document {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.ID < hits[j].doc.ID
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	out := make([]*schema.Document, len(hits))
	for i, h := range hits {
		doc := &schema.Document{ID: h.doc.ID, Content: h.doc.Content, MetaData: make(map[string]any, len(h.doc.MetaData)+1)}
		for key, v := range h.doc.MetaData {
			doc.MetaData[key] = v
		}
		out[i] = doc.WithScore(h.score)
	}
	return out
}

type memoryRecord struct {
	doc    *schema.Document
	vector []float64
}

// MemoryStore is a VectorStore held in process memory. It is safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

func (s *MemoryStore) Upsert(ctx context.Context, docs []*schema.Document, vectors [][]float64) error {
	if err := checkUpsert(docs, vectors); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		vec := make([]float64, len(vectors[i]))
		copy(vec, vectors[i])
		s.records[doc.ID] = memoryRecord{doc: doc, vector: vec}
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, vector []float64, k int) ([]*schema.Document, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	hits := make([]scored, 0, len(s.records))
	for _, rec := range s.records {
		hits = append(hits, scored{doc: rec.doc, score: cosine(vector, rec.vector)})
	}
	s.mu.RUnlock()

	return topK(hits, k), nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
