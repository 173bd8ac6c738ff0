// Package rag ingests documents into a vector store, retrieves the chunks
// closest to a question and asks a chat model to answer from them. Answers
// pass through the math normalizer before they are returned.
package rag

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"ragtex/internal/config"
	"ragtex/internal/logger"
	"ragtex/internal/mathnorm"
	"ragtex/internal/pdf"
	"ragtex/internal/types"
)

// Generator is the part of an eino chat model the service needs.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Answer is the normalized model answer with the chunks it was given.
type Answer struct {
	Text    string         `json:"answer"`
	Sources []types.Source `json:"sources"`
	UsedK   int            `json:"used_k"`
}

// Service wires an embedder, a vector store and a chat model together.
type Service struct {
	embedder   embedding.Embedder
	store      VectorStore
	chat       Generator
	normalizer *mathnorm.Normalizer
	loader     *pdf.Loader
	log        logger.Logger

	chunkSize      int
	chunkOverlap   int
	topK           int
	maxAnswerBytes int
}

// NewService creates a Service from cfg. Non-positive chunk size, top k and
// answer cap fall back to the config defaults. chat may be nil for a service
// that only ingests and retrieves; Ask then fails with CONFIG_ERROR.
func NewService(cfg *types.Config, embedder embedding.Embedder, store VectorStore, chat Generator, log logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, types.NewAppError(types.ErrConfig, "config is nil", nil)
	}
	if embedder == nil || store == nil {
		return nil, types.NewAppError(types.ErrConfig, "embedder and store are required", nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	opts, err := mathnorm.OptionsFromConfig(cfg.Normalizer)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		embedder:       embedder,
		store:          store,
		chat:           chat,
		normalizer:     mathnorm.New(&opts, log),
		loader:         pdf.NewLoader(log),
		log:            log,
		chunkSize:      cfg.ChunkSize,
		chunkOverlap:   cfg.ChunkOverlap,
		topK:           cfg.TopK,
		maxAnswerBytes: cfg.MaxAnswerBytes,
	}
	// a hand-built Config leaves these zero
	if svc.chunkSize <= 0 {
		svc.chunkSize = config.DefaultChunkSize
	}
	if svc.topK <= 0 {
		svc.topK = config.DefaultTopK
	}
	if svc.maxAnswerBytes <= 0 {
		svc.maxAnswerBytes = config.DefaultMaxAnswerBytes
	}
	return svc, nil
}

// IngestText chunks text, embeds the chunks and stores them under path.
// It returns the number of chunks stored.
func (s *Service) IngestText(ctx context.Context, path, text string) (int, error) {
	chunks := ChunkText(text, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := s.embedder.EmbedStrings(ctx, chunks)
	if err != nil {
		return 0, types.NewAppErrorWithDetails(types.ErrEmbedding, "failed to embed chunks", path, err)
	}
	if len(vectors) != len(chunks) {
		return 0, types.NewAppErrorWithDetails(types.ErrEmbedding, "embedder returned wrong number of vectors", path, nil)
	}

	docs := make([]*schema.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = ChunkDocument(path, i, c)
	}
	if err := s.store.Upsert(ctx, docs, vectors); err != nil {
		return 0, types.NewAppErrorWithDetails(types.ErrRetrieval, "failed to store chunks", path, err)
	}

	s.log.Debug("text ingested", logger.String("path", path), logger.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// IngestFiles ingests every path. PDFs go through the PDF loader; any other
// file is read as UTF-8 text with invalid bytes dropped. Files that cannot be
// read are skipped and counted.
func (s *Service) IngestFiles(ctx context.Context, paths []string) (*types.IngestResult, error) {
	result := &types.IngestResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		text, err := s.readFile(path)
		if err != nil {
			s.log.Warn("skipping unreadable file", logger.String("path", path), logger.Err(err))
			result.Skipped++
			continue
		}

		n, err := s.IngestText(ctx, path, text)
		if err != nil {
			return result, err
		}
		result.Files++
		result.Chunks += n
	}

	s.log.Info("ingest finished",
		logger.Int("files", result.Files),
		logger.Int("skipped", result.Skipped),
		logger.Int("chunks", result.Chunks))

	if result.Chunks == 0 {
		return result, types.NewAppError(types.ErrInvalidInput, "no chunks ingested", nil)
	}
	return result, nil
}

func (s *Service) readFile(path string) (string, error) {
	if pdf.IsPDF(path) {
		text, err := s.loader.ExtractText(path)
		if err != nil {
			return "", types.NewAppErrorWithDetails(types.ErrPDF, "failed to extract PDF text", path, err)
		}
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", types.NewAppErrorWithDetails(types.ErrFileNotFound, "file not found", path, err)
		}
		return "", types.NewAppErrorWithDetails(types.ErrInvalidInput, "failed to read file", path, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// Retrieve returns the k chunks most similar to question. A non-positive k
// selects the configured top_k.
func (s *Service) Retrieve(ctx context.Context, question string, k int) ([]*schema.Document, error) {
	if k <= 0 {
		k = s.topK
	}
	vectors, err := s.embedder.EmbedStrings(ctx, []string{question})
	if err != nil {
		return nil, types.NewAppError(types.ErrEmbedding, "failed to embed question", err)
	}
	if len(vectors) != 1 {
		return nil, types.NewAppError(types.ErrEmbedding, "embedder returned wrong number of vectors", nil)
	}

	docs, err := s.store.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, types.NewAppError(types.ErrRetrieval, "vector search failed", err)
	}
	return docs, nil
}

// Ask answers question from the k closest chunks.
func (s *Service) Ask(ctx context.Context, question string, k int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, types.NewAppError(types.ErrInvalidInput, "question is empty", nil)
	}
	if s.chat == nil {
		return nil, types.NewAppError(types.ErrConfig, "no chat model configured", nil)
	}

	requestID := uuid.NewString()
	start := time.Now()
	s.log.Info("ask started", logger.String("requestID", requestID), logger.Int("k", k))

	docs, err := s.Retrieve(ctx, question, k)
	if err != nil {
		s.log.Error("retrieval failed", err, logger.String("requestID", requestID))
		return nil, err
	}

	contexts := make([]string, len(docs))
	sources := make([]types.Source, len(docs))
	for i, doc := range docs {
		contexts[i] = doc.Content
		path, chunkID := DocumentSource(doc)
		sources[i] = types.Source{Rank: i + 1, Source: path, ChunkID: chunkID}
	}

	resp, err := s.chat.Generate(ctx, []*schema.Message{
		schema.UserMessage(BuildPrompt(question, contexts)),
	})
	if err != nil {
		s.log.Error("chat model call failed", err, logger.String("requestID", requestID))
		return nil, types.NewAppError(types.ErrAPICall, "chat model call failed", err)
	}
	if resp == nil {
		return nil, types.NewAppError(types.ErrAPICall, "chat model returned no message", nil)
	}

	text := s.normalizeAnswer(requestID, resp.Content)
	s.log.Info("ask finished",
		logger.String("requestID", requestID),
		logger.Int("usedK", len(docs)),
		logger.Duration("elapsed", time.Since(start)))

	return &Answer{Text: text, Sources: sources, UsedK: len(docs)}, nil
}

// normalizeAnswer returns the answer unchanged when it is too large or not
// valid UTF-8.
func (s *Service) normalizeAnswer(requestID, text string) string {
	if len(text) > s.maxAnswerBytes {
		s.log.Warn("answer exceeds size cap, skipping normalization",
			logger.String("requestID", requestID),
			logger.Int("bytes", len(text)),
			logger.Int("maxBytes", s.maxAnswerBytes))
		return text
	}
	out, err := s.normalizer.Enforce(text)
	if err != nil {
		s.log.Warn("answer not normalized", logger.String("requestID", requestID), logger.Err(err))
		return text
	}
	return out
}
