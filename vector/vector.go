package vector

import "context"

type Config struct {
	Persistent bool            `yaml:"persistent"`
	Path       string          `yaml:"path"`
	Collection string          `yaml:"collection"`
	Embedding  EmbeddingConfig `yaml:"embedding"`
}

// EmbeddingConfig selects how documents and queries are embedded. Provider
// is one of "default", "ollama" or "openai".
type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"baseURL"`
	APIKey   string `yaml:"apiKey"`
}

type VectorDB interface {
	Collection(name string) (Collection, error)
}

type Collection interface {
	AddDocument(ctx context.Context, doc Document) error
	FindDocument(ctx context.Context, id string) (Document, error)
	Query(ctx context.Context, query string, k int) (QueryResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

type Document struct {
	ID        string            `json:"id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Content   string            `json:"content"`
	Embedding []float32         `json:"embedding,omitempty"`
}

// QueryResult carries the store response as parallel arrays in the order
// the store returned them. Distances may be absent when the store cannot
// report them; callers must check HasDistances before filtering.
type QueryResult struct {
	IDs       []string            `json:"ids"`
	Documents []string            `json:"documents"`
	Metadatas []map[string]string `json:"metadatas,omitempty"`
	Distances []float64           `json:"distances,omitempty"`
}

func (r QueryResult) HasDistances() bool {
	return len(r.Distances) > 0
}
