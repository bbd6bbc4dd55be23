package chromem

import (
	"context"
	"errors"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/flarexio/ragblade/vector"
)

var ErrUnsupportedEmbeddingProvider = errors.New("unsupported embedding provider")

func NewChromemVectorDB(cfg vector.Config) (vector.VectorDB, error) {
	var db *chromem.DB
	if !cfg.Persistent {
		db = chromem.NewDB()
	} else {
		d, err := chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, err
		}

		db = d
	}

	embeddingFunc, err := newEmbeddingFunc(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	return &chromemVectorDB{
		db:            db,
		embeddingFunc: embeddingFunc,
	}, nil
}

func newEmbeddingFunc(cfg vector.EmbeddingConfig) (chromem.EmbeddingFunc, error) {
	switch cfg.Provider {
	case "", "default":
		// chromem falls back to its built-in default embedding function.
		return nil, nil

	case "ollama":
		return chromem.NewEmbeddingFuncOllama(cfg.Model, cfg.BaseURL), nil

	case "openai":
		return chromem.NewEmbeddingFuncOpenAI(cfg.APIKey, chromem.EmbeddingModelOpenAI(cfg.Model)), nil

	default:
		return nil, ErrUnsupportedEmbeddingProvider
	}
}

type chromemVectorDB struct {
	db            *chromem.DB
	embeddingFunc chromem.EmbeddingFunc
}

func (vectorDB *chromemVectorDB) Collection(name string) (vector.Collection, error) {
	c, err := vectorDB.db.GetOrCreateCollection(name, nil, vectorDB.embeddingFunc)
	if err != nil {
		return nil, err
	}

	return &collection{
		db:            vectorDB.db,
		name:          name,
		embeddingFunc: vectorDB.embeddingFunc,
		collection:    c,
	}, nil
}

type collection struct {
	db            *chromem.DB
	name          string
	embeddingFunc chromem.EmbeddingFunc

	mu         sync.RWMutex
	collection *chromem.Collection
}

func (c *collection) AddDocument(ctx context.Context, doc vector.Document) error {
	document := chromem.Document{
		ID:        doc.ID,
		Metadata:  doc.Metadata,
		Embedding: doc.Embedding,
		Content:   doc.Content,
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.collection.AddDocument(ctx, document)
}

func (c *collection) FindDocument(ctx context.Context, id string) (vector.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	document, err := c.collection.GetByID(ctx, id)
	if err != nil {
		return vector.Document{}, err
	}

	return vector.Document{
		ID:        document.ID,
		Metadata:  document.Metadata,
		Embedding: document.Embedding,
		Content:   document.Content,
	}, nil
}

func (c *collection) Query(ctx context.Context, query string, k int) (vector.QueryResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if count := c.collection.Count(); k > count {
		k = count
	}

	result := vector.QueryResult{
		IDs:       make([]string, 0, k),
		Documents: make([]string, 0, k),
		Metadatas: make([]map[string]string, 0, k),
		Distances: make([]float64, 0, k),
	}

	if k <= 0 {
		return result, nil
	}

	results, err := c.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return vector.QueryResult{}, err
	}

	for _, r := range results {
		result.IDs = append(result.IDs, r.ID)
		result.Documents = append(result.Documents, r.Content)
		result.Metadatas = append(result.Metadatas, r.Metadata)

		// chromem reports cosine similarity; the caller works with
		// distances where lower means more similar.
		result.Distances = append(result.Distances, 1-float64(r.Similarity))
	}

	return result, nil
}

func (c *collection) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.collection.Count(), nil
}

// Clear drops and recreates the underlying collection. chromem has no bulk
// delete without filters, so recreation is the cheapest way to empty it.
func (c *collection) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.DeleteCollection(c.name); err != nil {
		return err
	}

	fresh, err := c.db.GetOrCreateCollection(c.name, nil, c.embeddingFunc)
	if err != nil {
		return err
	}

	c.collection = fresh
	return nil
}
