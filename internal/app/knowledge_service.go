package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"docubase/internal/ai"
	"docubase/internal/chunker"
	"docubase/internal/model"
	"docubase/internal/pkg/keylock"
	"docubase/internal/pkg/textextract"
	"docubase/internal/retrieval"
)

const DefaultCollection = "default"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedKind   = errors.New("unsupported source kind")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidTopK       = errors.New("top_k must be positive")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrNoStoredSource    = errors.New("no stored source to re-index from")
)

// DocumentStore, ChunkStore and CollectionStore are the persistence
// capabilities the pipeline consumes; the storage engine lives behind
// them. ReplaceForDocument must be atomic: all chunks of an indexing
// attempt become visible together or not at all.
type DocumentStore interface {
	Create(doc *model.Document) error
	Get(id uint) (*model.Document, error)
	UpdateStats(id uint, totalChunks, totalPages int, active bool) error
	ListByCollectionID(collectionID uint, activeOnly bool) ([]model.Document, error)
	DeleteCascade(id uint) error
	SaveBlob(documentID uint, data []byte) error
	GetBlob(documentID uint) ([]byte, error)
}

type ChunkStore interface {
	ReplaceForDocument(documentID uint, chunks []model.Chunk) error
	ListByDocumentIDs(documentIDs []uint) ([]model.Chunk, error)
}

type CollectionStore interface {
	GetOrCreate(name string) (*model.Collection, error)
	GetByName(name string) (*model.Collection, error)
}

// Embedder is the pluggable embedding capability, already wrapped with
// degraded-mode fallback so it never fails.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, ai.Quality)
	EmbedOne(ctx context.Context, text string) ([]float32, ai.Quality)
	Dimension() int
}

// VectorCache memoizes query embeddings. Optional.
type VectorCache interface {
	Get(ctx context.Context, question string) ([]float32, bool, error)
	Set(ctx context.Context, question string, vec []float32) error
}

// ReindexPublisher queues a document for background re-indexing. Optional;
// without one, Reindex runs inline.
type ReindexPublisher interface {
	Publish(ctx context.Context, task model.ReindexTask) error
}

// Options carries the optional collaborators and tunables of the service.
type Options struct {
	Cache          VectorCache
	ReindexPub     ReindexPublisher
	FetchClient    *http.Client // for tabular_remote sources
	EmbedBatchSize int
	DefaultTopK    int
}

// KnowledgeService owns the two halves of the pipeline: ingestion
// (extract, chunk, embed, store) and querying (embed, rank, assemble).
type KnowledgeService struct {
	docs        DocumentStore
	chunks      ChunkStore
	collections CollectionStore
	extractors  *textextract.Registry
	chunker     *chunker.Chunker
	embedder    Embedder

	cache       VectorCache
	reindexPub  ReindexPublisher
	fetchClient *http.Client
	batchSize   int
	defaultTopK int

	// locks serializes indexing per document id; indexing of different
	// documents runs in parallel.
	locks *keylock.KeyedMutex
}

func NewKnowledgeService(
	docs DocumentStore,
	chunks ChunkStore,
	collections CollectionStore,
	extractors *textextract.Registry,
	ch *chunker.Chunker,
	embedder Embedder,
	opts Options,
) *KnowledgeService {
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = 10
	}
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	if opts.FetchClient == nil {
		opts.FetchClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &KnowledgeService{
		docs:        docs,
		chunks:      chunks,
		collections: collections,
		extractors:  extractors,
		chunker:     ch,
		embedder:    embedder,
		cache:       opts.Cache,
		reindexPub:  opts.ReindexPub,
		fetchClient: opts.FetchClient,
		batchSize:   opts.EmbedBatchSize,
		defaultTopK: opts.DefaultTopK,
		locks:       keylock.New(),
	}
}

// IngestInput describes one source to index. Data carries the raw bytes
// for local kinds; SourceURL points at the published representation for
// tabular_remote.
type IngestInput struct {
	Name       string
	SourceRef  string // original filename or URL
	Kind       model.SourceKind
	Collection string
	UploadedBy string
	Data       []byte
	SourceURL  string
}

// IngestResult reports the created document and how its indexing went.
// Placeholder means extraction degraded to the sentinel note; Quality
// is fallback when any batch was embedded without the real provider.
type IngestResult struct {
	Document    model.Document         `json:"document"`
	ChunkCount  int                    `json:"chunk_count"`
	PageCount   int                    `json:"page_count"`
	Quality     model.EmbeddingQuality `json:"embedding_quality"`
	Placeholder bool                   `json:"placeholder"`
}

// Ingest runs the full indexing pipeline for one source. The document
// row is written before extraction starts and stays inactive until its
// chunks and stats land; a remote source that cannot be fetched fails
// before any row exists. Ingesting the same name twice produces two
// independent documents.
func (s *KnowledgeService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if !input.Kind.Valid() {
		return nil, ErrUnsupportedKind
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSpace(input.SourceRef)
	}
	if name == "" {
		name = "Untitled"
	}
	collection := strings.TrimSpace(input.Collection)
	if collection == "" {
		collection = DefaultCollection
	}

	data := input.Data
	sourceRef := strings.TrimSpace(input.SourceRef)
	if input.Kind == model.SourceTabularRemote {
		url := strings.TrimSpace(input.SourceURL)
		if url == "" {
			return nil, ErrInvalidInput
		}
		fetched, err := textextract.FetchRemote(ctx, s.fetchClient, url)
		if err != nil {
			return nil, err
		}
		data = fetched
		sourceRef = url
	}

	col, err := s.collections.GetOrCreate(collection)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		CollectionID: col.ID,
		Name:         name,
		SourceRef:    sourceRef,
		Kind:         input.Kind,
		UploadedBy:   strings.TrimSpace(input.UploadedBy),
		Active:       false,
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}

	s.locks.Lock(doc.ID)
	defer s.locks.Unlock(doc.ID)

	// Keep the raw bytes so the document can be re-indexed later;
	// remote sources are re-fetched instead.
	if input.Kind != model.SourceTabularRemote && len(data) > 0 {
		if err := s.docs.SaveBlob(doc.ID, data); err != nil {
			log.Printf("save source blob for document %d failed: %v", doc.ID, err)
		}
	}

	return s.index(ctx, doc, data)
}

// index runs extract → chunk → embed → store for a document whose row
// already exists, then closes out its stats and activates it. Caller
// must hold the document's lock.
func (s *KnowledgeService) index(ctx context.Context, doc *model.Document, data []byte) (*IngestResult, error) {
	extractor, ok := s.extractors.Lookup(doc.Kind)
	if !ok {
		return nil, ErrUnsupportedKind
	}
	extracted := extractor.Extract(data)

	var pieces []chunker.Piece
	base := 0
	for _, page := range extracted.Pages {
		pieces = append(pieces, s.chunker.Split(page.Text, page.Number, base)...)
		base += len(page.Text) + 1 // pages join with "\n" in the normalized stream
	}

	texts := make([]string, len(pieces))
	for i := range pieces {
		texts[i] = pieces[i].Content
	}

	vectors := make([][]float32, 0, len(texts))
	qualities := make([]ai.Quality, 0, len(texts))
	overall := ai.QualityReal
	for i := 0; i < len(texts); i += s.batchSize {
		end := min(i+s.batchSize, len(texts))
		vecs, q := s.embedder.EmbedBatch(ctx, texts[i:end])
		if q == ai.QualityFallback {
			overall = ai.QualityFallback
		}
		vectors = append(vectors, vecs...)
		for range vecs {
			qualities = append(qualities, q)
		}
	}

	chunks := make([]model.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = model.Chunk{
			DocumentID:  doc.ID,
			ChunkIndex:  i,
			Content:     p.Content,
			Page:        p.Page,
			StartOffset: p.Start,
			EndOffset:   p.End,
			Quality:     model.EmbeddingQuality(qualities[i]),
		}
		chunks[i].SetEmbedding(vectors[i])
	}

	if err := s.chunks.ReplaceForDocument(doc.ID, chunks); err != nil {
		return nil, err
	}
	if err := s.docs.UpdateStats(doc.ID, len(chunks), len(extracted.Pages), true); err != nil {
		return nil, err
	}

	doc.TotalChunks = len(chunks)
	doc.TotalPages = len(extracted.Pages)
	doc.Active = true

	if overall == ai.QualityFallback {
		log.Printf("document %d indexed with fallback embeddings; re-index once a provider is configured", doc.ID)
	}

	return &IngestResult{
		Document:    *doc,
		ChunkCount:  len(chunks),
		PageCount:   len(extracted.Pages),
		Quality:     model.EmbeddingQuality(overall),
		Placeholder: extracted.Placeholder,
	}, nil
}

// QueryInput scopes a question to one collection. TopK must be positive.
type QueryInput struct {
	Question   string
	Collection string
	TopK       int
}

// QueryResult is the grounded prompt plus its sources manifest. An
// empty manifest with the bare question means nothing qualified.
type QueryResult struct {
	Prompt  string                `json:"prompt"`
	Sources []retrieval.SourceRef `json:"sources"`
}

// Query embeds the question, ranks every chunk of the collection's
// active documents by cosine similarity and assembles the prompt.
func (s *KnowledgeService) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}
	if input.TopK <= 0 {
		return nil, ErrInvalidTopK
	}
	collection := strings.TrimSpace(input.Collection)
	if collection == "" {
		collection = DefaultCollection
	}

	col, err := s.collections.GetByName(collection)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, ErrUnknownCollection
	}

	docs, err := s.docs.ListByCollectionID(col.ID, true)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return s.emptyResult(question), nil
	}

	docIDs := make([]uint, len(docs))
	names := make(map[uint]string, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
		names[d.ID] = d.Name
	}

	candidates, err := s.chunks.ListByDocumentIDs(docIDs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return s.emptyResult(question), nil
	}

	queryVec := s.queryVector(ctx, question)
	ranked := retrieval.TopK(queryVec, candidates, input.TopK)
	assembled := retrieval.Assemble(question, ranked, names)
	return &QueryResult{Prompt: assembled.Prompt, Sources: assembled.Sources}, nil
}

func (s *KnowledgeService) emptyResult(question string) *QueryResult {
	assembled := retrieval.Assemble(question, nil, nil)
	return &QueryResult{Prompt: assembled.Prompt, Sources: assembled.Sources}
}

// queryVector embeds the question, consulting the cache first. Fallback
// vectors are never cached so a later credential fix takes effect
// immediately.
func (s *KnowledgeService) queryVector(ctx context.Context, question string) []float32 {
	if s.cache != nil {
		vec, ok, err := s.cache.Get(ctx, question)
		if err != nil {
			log.Printf("query vector cache get failed: %v", err)
		} else if ok {
			return vec
		}
	}

	vec, quality := s.embedder.EmbedOne(ctx, question)
	if s.cache != nil && quality == ai.QualityReal {
		if err := s.cache.Set(ctx, question, vec); err != nil {
			log.Printf("query vector cache set failed: %v", err)
		}
	}
	return vec
}

// Delete removes a document and all its chunks. Unknown ids are a no-op.
func (s *KnowledgeService) Delete(ctx context.Context, documentID uint) error {
	if documentID == 0 {
		return ErrInvalidInput
	}
	s.locks.Lock(documentID)
	defer s.locks.Unlock(documentID)
	return s.docs.DeleteCascade(documentID)
}

// ListDocuments returns every document of a collection, including ones
// still indexing.
func (s *KnowledgeService) ListDocuments(ctx context.Context, collection string) ([]model.Document, error) {
	name := strings.TrimSpace(collection)
	if name == "" {
		name = DefaultCollection
	}
	col, err := s.collections.GetByName(name)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, ErrUnknownCollection
	}
	return s.docs.ListByCollectionID(col.ID, false)
}

// Reindex queues a rebuild of the document's chunk set, or runs it
// inline when no queue is configured. Returns the task id.
func (s *KnowledgeService) Reindex(ctx context.Context, documentID uint, taskID string) (string, error) {
	doc, err := s.docs.Get(documentID)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", ErrDocumentNotFound
	}

	task := model.ReindexTask{TaskID: taskID, DocumentID: documentID}
	if s.reindexPub != nil {
		if err := s.reindexPub.Publish(ctx, task); err != nil {
			return "", err
		}
		return task.TaskID, nil
	}
	return task.TaskID, s.ReindexNow(ctx, documentID)
}

// ReindexNow rebuilds a document's chunks from its stored blob (or a
// re-fetch for remote sources). The document is deactivated for the
// duration so a half-indexed state is never searchable.
func (s *KnowledgeService) ReindexNow(ctx context.Context, documentID uint) error {
	doc, err := s.docs.Get(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	s.locks.Lock(doc.ID)
	defer s.locks.Unlock(doc.ID)

	var data []byte
	if doc.Kind == model.SourceTabularRemote {
		data, err = textextract.FetchRemote(ctx, s.fetchClient, doc.SourceRef)
		if err != nil {
			return err
		}
	} else {
		data, err = s.docs.GetBlob(doc.ID)
		if err != nil {
			return err
		}
		if data == nil {
			return ErrNoStoredSource
		}
	}

	if err := s.docs.UpdateStats(doc.ID, doc.TotalChunks, doc.TotalPages, false); err != nil {
		return err
	}
	_, err = s.index(ctx, doc, data)
	return err
}
