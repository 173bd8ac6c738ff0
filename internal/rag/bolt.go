package rag

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudwego/eino/schema"
	bolt "go.etcd.io/bbolt"

	"ragtex/internal/types"
)

// boltRecord is the JSON value stored under a document ID.
type boltRecord struct {
	Content  string         `json:"content"`
	MetaData map[string]any `json:"metadata,omitempty"`
	Vector   []float64      `json:"vector"`
}

// BoltStore is a VectorStore persisted in a bbolt file, one bucket per
// collection. Search scans the whole bucket.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBoltStore opens or creates the database at path and the bucket for
// collection.
func OpenBoltStore(path, collection string) (*BoltStore, error) {
	if collection == "" {
		return nil, types.NewAppError(types.ErrConfig, "collection name is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, types.NewAppError(types.ErrRetrieval, "failed to create store directory", err)
	}
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrRetrieval, "failed to open vector store", path, err)
	}

	s := &BoltStore{db: db, bucket: []byte(collection)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, types.NewAppError(types.ErrRetrieval, "failed to initialize collection", err)
	}
	return s, nil
}

func (s *BoltStore) Upsert(ctx context.Context, docs []*schema.Document, vectors [][]float64) error {
	if err := checkUpsert(docs, vectors); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for i, doc := range docs {
			data, err := json.Marshal(boltRecord{Content: doc.Content, MetaData: doc.MetaData, Vector: vectors[i]})
			if err != nil {
				return types.NewAppErrorWithDetails(types.ErrInternal, "failed to encode record", doc.ID, err)
			}
			if err := b.Put([]byte(doc.ID), data); err != nil {
				return types.NewAppErrorWithDetails(types.ErrRetrieval, "failed to store record", doc.ID, err)
			}
		}
		return nil
	})
}

func (s *BoltStore) Search(ctx context.Context, vector []float64, k int) ([]*schema.Document, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hits []scored
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, v []byte) error {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return types.NewAppErrorWithDetails(types.ErrRetrieval, "corrupt record", string(k), err)
			}
			doc := &schema.Document{ID: string(k), Content: rec.Content, MetaData: rec.MetaData}
			hits = append(hits, scored{doc: doc, score: cosine(vector, rec.Vector)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return topK(hits, k), nil
}

func (s *BoltStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	return n, err
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
