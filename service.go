package ragblade

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/flarexio/ragblade/filter"
	"github.com/flarexio/ragblade/llm"
	"github.com/flarexio/ragblade/vector"
)

// Service defines the core logic of RAGBlade.
type Service interface {

	// Close gracefully shuts down the service.
	Close() error

	// AddContext stores free-text context in the vector collection. The
	// optional source labels where the content came from.
	AddContext(ctx context.Context, content string, source ...string) error

	// ClearContext removes every document from the collection.
	ClearContext(ctx context.Context) error

	// CollectionInfo reports the collection name and document count.
	CollectionInfo(ctx context.Context) (CollectionInfo, error)

	// Retrieve finds the k most relevant passages for a query and reduces
	// them with distance filtering.
	Retrieve(ctx context.Context, query string, k ...int) (*RetrievalResult, error)

	// Ask runs the full pipeline: retrieve, build a prompt and generate an
	// answer.
	Ask(ctx context.Context, prompt string) (string, error)
}

type ServiceMiddleware func(Service) Service

func NewService(ctx context.Context, cfg Config, vectorDB vector.VectorDB, generator llm.Generator) (Service, error) {
	log := zap.L().With(
		zap.String("service", "ragblade"),
	)

	svc := &service{
		cfg:       cfg,
		generator: generator,
		log:       log,
	}

	if vectorDB != nil {
		collection, err := vectorDB.Collection(cfg.Vector.Collection)
		if err != nil {
			return nil, err
		}

		svc.collection = collection
	}

	return svc, nil
}

type service struct {
	// Vector collection (thread-safe by itself)
	collection vector.Collection

	generator llm.Generator

	cfg Config
	log *zap.Logger
}

func (svc *service) Close() error {
	svc.log.Info("service closed")
	return nil
}

func (svc *service) AddContext(ctx context.Context, content string, source ...string) error {
	label := "user_input"
	if len(source) > 0 && source[0] != "" {
		label = source[0]
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	if svc.collection == nil {
		return ErrCollectionNotSet
	}

	doc := ContextToDocument(content, label)

	existing, err := svc.collection.FindDocument(ctx, doc.ID)
	if err == nil && existing.ID == doc.ID {
		// Identical content was already added.
		return nil
	}

	return svc.collection.AddDocument(ctx, doc)
}

func (svc *service) ClearContext(ctx context.Context) error {
	if svc.collection == nil {
		return ErrCollectionNotSet
	}

	return svc.collection.Clear(ctx)
}

func (svc *service) CollectionInfo(ctx context.Context) (CollectionInfo, error) {
	if svc.collection == nil {
		return CollectionInfo{}, ErrCollectionNotSet
	}

	count, err := svc.collection.Count(ctx)
	if err != nil {
		return CollectionInfo{}, err
	}

	return CollectionInfo{
		Name:  svc.cfg.Vector.Collection,
		Count: count,
		Path:  svc.cfg.Vector.Path,
	}, nil
}

func (svc *service) Retrieve(ctx context.Context, query string, k ...int) (*RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if svc.collection == nil {
		return nil, ErrCollectionNotSet
	}

	n := svc.cfg.Retrieval.MaxResults
	if len(k) > 0 && k[0] > 0 {
		n = k[0]
	}

	// Over-fetch so the filtering strategies have enough raw material to
	// detect gaps and apply ratio logic.
	fetch := n * 3
	if m := svc.cfg.Filter.MinResults * 2; m > fetch {
		fetch = m
	}

	res, err := svc.collection.Query(ctx, query, fetch)
	if err != nil {
		return nil, err
	}

	candidates := filter.FromColumns(res.IDs, res.Documents, res.Metadatas, res.Distances)

	if len(res.Documents) > 0 && !res.HasDistances() {
		// Degenerate store response: no distance information, so filtering
		// is impossible. Pass everything through unchanged.
		if svc.cfg.Filter.Debug {
			svc.log.Warn("no distance information in query results",
				zap.Int("count", len(res.Documents)),
			)
		}

		passthrough := make([]filter.Candidate, len(res.Documents))
		for i, doc := range res.Documents {
			passthrough[i] = filter.Candidate{Content: doc}

			if i < len(res.IDs) {
				passthrough[i].ID = res.IDs[i]
			}

			if i < len(res.Metadatas) {
				passthrough[i].Metadata = res.Metadatas[i]
			}
		}

		kept := passthrough
		if len(kept) > n {
			kept = kept[:n]
		}

		text := svc.combineDocuments(kept, false)
		if text == "" {
			text = NoRelevantInformation
		}

		return &RetrievalResult{
			Text: text,
			Outcome: filter.Outcome{
				Kept:          kept,
				OriginalCount: len(passthrough),
				KeptCount:     len(kept),
			},
			Candidates: passthrough,
		}, nil
	}

	outcome := filter.Filter(candidates, svc.cfg.Filter)

	if outcome.RejectedByHardThreshold {
		if svc.cfg.Filter.Debug && outcome.BestDistance != nil {
			svc.log.Info("all results rejected by hard distance threshold",
				zap.Float64("hard_threshold", svc.cfg.Filter.HardThreshold),
				zap.Float64("best_distance", *outcome.BestDistance),
			)
		}

		return &RetrievalResult{
			Text:       NoRelevantInformation,
			Outcome:    outcome,
			Candidates: candidates,
		}, nil
	}

	kept := outcome.Kept
	if len(kept) > n {
		kept = kept[:n]
	}

	text := svc.combineDocuments(kept, svc.cfg.Filter.Debug)
	if text == "" {
		text = NoRelevantInformation
	}

	return &RetrievalResult{
		Text:       text,
		Outcome:    outcome,
		Candidates: candidates,
	}, nil
}

// combineDocuments concatenates document text best-first under the total
// length budget. A document that overflows the budget is truncated to the
// remaining space when that space is still worth filling; nothing is
// appended after a truncated document.
func (svc *service) combineDocuments(kept []filter.Candidate, withScores bool) string {
	var (
		parts []string
		total int
	)

	maxLength := svc.cfg.Retrieval.MaxDataLength

	for _, c := range kept {
		doc := c.Content

		if total+len(doc) <= maxLength {
			if withScores {
				doc = fmt.Sprintf("[Score: %.3f] %s", c.Distance, doc)
			}

			parts = append(parts, doc)
			total += len(c.Content)
			continue
		}

		remaining := maxLength - total
		if remaining > svc.cfg.Retrieval.MinPartialLength {
			partial := c.Content[:remaining] + "..."
			if withScores {
				partial = fmt.Sprintf("[Score: %.3f] %s", c.Distance, partial)
			}

			parts = append(parts, partial)
		}

		break
	}

	return strings.Join(parts, "\n\n")
}

func (svc *service) Ask(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyQuery
	}

	if svc.generator == nil {
		return "", ErrGeneratorNotSet
	}

	result, err := svc.Retrieve(ctx, prompt)
	if err != nil {
		return "", err
	}

	var fullPrompt string
	if svc.cfg.EnhancedPrompts {
		fullPrompt = BuildEnhancedPrompt(prompt, result.Text)
	} else {
		fullPrompt = BuildPrompt(prompt, result.Text)
	}

	return svc.generator.Generate(ctx, fullPrompt)
}
