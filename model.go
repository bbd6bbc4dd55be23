package ragblade

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/flarexio/ragblade/filter"
	"github.com/flarexio/ragblade/llm"
	"github.com/flarexio/ragblade/vector"
)

var (
	ErrEmptyQuery       = errors.New("empty query")
	ErrEmptyContent     = errors.New("empty content")
	ErrCollectionNotSet = errors.New("vector collection not set")
	ErrGeneratorNotSet  = errors.New("generator not set")
)

// NoRelevantInformation is the sentinel retrieval text returned when the
// store holds nothing relevant for a query. It is a first-class outcome,
// not an error; callers branch on it before building a prompt.
const NoRelevantInformation = "No relevant information found."

type Config struct {
	Vector          vector.Config   `yaml:"vector"`
	Filter          filter.Config   `yaml:"filter"`
	Retrieval       RetrievalConfig `yaml:"retrieval"`
	LLM             llm.Config      `yaml:"llm"`
	EnhancedPrompts bool            `yaml:"enhancedPrompts"`
}

type RetrievalConfig struct {
	// MaxResults is the default number of documents a retrieval returns
	// when the caller does not ask for a specific count.
	MaxResults int `yaml:"maxResults"`

	// MaxDataLength bounds the total retrieved text handed to the prompt.
	MaxDataLength int `yaml:"maxDataLength"`

	// MinPartialLength is the smallest leftover budget worth filling with
	// a truncated document.
	MinPartialLength int `yaml:"minPartialLength"`
}

func DefaultConfig() Config {
	return Config{
		Vector: vector.Config{
			Collection: "context",
		},
		Filter: filter.DefaultConfig(),
		Retrieval: RetrievalConfig{
			MaxResults:       1,
			MaxDataLength:    1000,
			MinPartialLength: 100,
		},
		LLM: llm.Config{
			BaseURL: "http://localhost:11434/v1",
			APIKey:  "ollama",
			Model:   "llama3.2",
			Timeout: llm.Duration(30 * time.Second),
		},
	}
}

// RetrievalResult is what a retrieval hands back: the bounded text blob for
// prompt embedding, the filter outcome as provenance, and the raw candidate
// set before filtering.
type RetrievalResult struct {
	Text       string             `json:"text"`
	Outcome    filter.Outcome     `json:"filtering"`
	Candidates []filter.Candidate `json:"candidates,omitempty"`
}

type CollectionInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Path  string `json:"path,omitempty"`
}

// ContextToDocument wraps user-supplied context text in a store document.
// The ID is a content hash, so re-adding identical context is idempotent.
func ContextToDocument(content, source string) vector.Document {
	return vector.Document{
		ID:       generateDocumentID(content, source),
		Content:  content,
		Metadata: buildMetadata(source),
	}
}

func generateDocumentID(content, source string) string {
	data := fmt.Sprintf("%s|%s", source, content)

	hash := sha256.Sum256([]byte(data))
	return "ctx_" + hex.EncodeToString(hash[:12])
}

func buildMetadata(source string) map[string]string {
	return map[string]string{
		"source":       source,
		"timestamp":    time.Now().UTC().Format("20060102_150405"),
		"content_type": "user_context",
	}
}
