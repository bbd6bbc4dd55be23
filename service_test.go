package ragblade

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/ragblade/vector"
)

type fakeCollection struct {
	docs   map[string]vector.Document
	result vector.QueryResult
	err    error
	lastK  int
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{
		docs: make(map[string]vector.Document),
	}
}

func (f *fakeCollection) AddDocument(ctx context.Context, doc vector.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeCollection) FindDocument(ctx context.Context, id string) (vector.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return vector.Document{}, errors.New("document not found")
	}

	return doc, nil
}

func (f *fakeCollection) Query(ctx context.Context, query string, k int) (vector.QueryResult, error) {
	f.lastK = k

	if f.err != nil {
		return vector.QueryResult{}, f.err
	}

	return f.result, nil
}

func (f *fakeCollection) Count(ctx context.Context) (int, error) {
	return len(f.docs), nil
}

func (f *fakeCollection) Clear(ctx context.Context) error {
	f.docs = make(map[string]vector.Document)
	return nil
}

type fakeVectorDB struct {
	collection *fakeCollection
}

func (f *fakeVectorDB) Collection(name string) (vector.Collection, error) {
	return f.collection, nil
}

type fakeGenerator struct {
	lastPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return "generated answer", nil
}

func (f *fakeGenerator) Model() string {
	return "fake-model"
}

func queryResult(documents []string, distances []float64) vector.QueryResult {
	ids := make([]string, len(documents))
	metadatas := make([]map[string]string, len(documents))
	for i := range documents {
		ids[i] = string(rune('a' + i))
		metadatas[i] = map[string]string{"source": "test"}
	}

	return vector.QueryResult{
		IDs:       ids,
		Documents: documents,
		Metadatas: metadatas,
		Distances: distances,
	}
}

type ragBladeTestSuite struct {
	suite.Suite
	ctx        context.Context
	svc        Service
	collection *fakeCollection
	generator  *fakeGenerator
}

func (suite *ragBladeTestSuite) SetupTest() {
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Retrieval.MaxResults = 3

	collection := newFakeCollection()
	generator := &fakeGenerator{}

	svc, err := NewService(ctx, cfg, &fakeVectorDB{collection}, generator)
	if err != nil {
		suite.FailNow(err.Error())
		return
	}

	suite.ctx = ctx
	suite.svc = svc
	suite.collection = collection
	suite.generator = generator
}

func (suite *ragBladeTestSuite) TestAddContext() {
	err := suite.svc.AddContext(suite.ctx, "llamas are members of the camelid family", "wiki")
	suite.NoError(err)
	suite.Len(suite.collection.docs, 1)

	for _, doc := range suite.collection.docs {
		suite.Equal("wiki", doc.Metadata["source"])
		suite.Equal("user_context", doc.Metadata["content_type"])
	}

	// Identical content is deduplicated by its hash ID.
	err = suite.svc.AddContext(suite.ctx, "llamas are members of the camelid family", "wiki")
	suite.NoError(err)
	suite.Len(suite.collection.docs, 1)
}

func (suite *ragBladeTestSuite) TestAddContextEmpty() {
	err := suite.svc.AddContext(suite.ctx, "   \n  ")
	suite.ErrorIs(err, ErrEmptyContent)
}

func (suite *ragBladeTestSuite) TestClearContext() {
	suite.svc.AddContext(suite.ctx, "some context")
	suite.Len(suite.collection.docs, 1)

	err := suite.svc.ClearContext(suite.ctx)
	suite.NoError(err)
	suite.Len(suite.collection.docs, 0)
}

func (suite *ragBladeTestSuite) TestCollectionInfo() {
	suite.svc.AddContext(suite.ctx, "some context")

	info, err := suite.svc.CollectionInfo(suite.ctx)
	suite.NoError(err)
	suite.Equal("context", info.Name)
	suite.Equal(1, info.Count)
}

func (suite *ragBladeTestSuite) TestRetrieve() {
	suite.collection.result = queryResult(
		[]string{"first", "second", "third", "fourth"},
		[]float64{0.1, 0.15, 0.9, 0.95},
	)

	result, err := suite.svc.Retrieve(suite.ctx, "query")
	suite.NoError(err)

	suite.Equal("first\n\nsecond", result.Text)
	suite.Equal(4, result.Outcome.OriginalCount)
	suite.Equal(2, result.Outcome.KeptCount)
	suite.False(result.Outcome.RejectedByHardThreshold)
	suite.Len(result.Candidates, 4)
}

func (suite *ragBladeTestSuite) TestRetrieveOverFetches() {
	suite.collection.result = queryResult(
		[]string{"first", "second"},
		[]float64{0.1, 0.2},
	)

	// k=1 over-fetches max(1*3, minResults*2) = 4 candidates.
	_, err := suite.svc.Retrieve(suite.ctx, "query", 1)
	suite.NoError(err)
	suite.Equal(4, suite.collection.lastK)

	// k=5 over-fetches 15.
	_, err = suite.svc.Retrieve(suite.ctx, "query", 5)
	suite.NoError(err)
	suite.Equal(15, suite.collection.lastK)
}

func (suite *ragBladeTestSuite) TestRetrieveTruncatesToRequestedCount() {
	suite.collection.result = queryResult(
		[]string{"first", "second", "third"},
		[]float64{0.1, 0.12, 0.14},
	)

	result, err := suite.svc.Retrieve(suite.ctx, "query", 2)
	suite.NoError(err)

	suite.Equal("first\n\nsecond", result.Text)
	suite.Equal(3, result.Outcome.KeptCount, "outcome keeps all, orchestrator truncates")
}

func (suite *ragBladeTestSuite) TestRetrieveRejectedByHardThreshold() {
	suite.collection.result = queryResult(
		[]string{"far", "farther"},
		[]float64{1.5, 2.0},
	)

	result, err := suite.svc.Retrieve(suite.ctx, "query")
	suite.NoError(err)

	suite.Equal(NoRelevantInformation, result.Text)
	suite.True(result.Outcome.RejectedByHardThreshold)
	if suite.NotNil(result.Outcome.BestDistance) {
		suite.Equal(1.5, *result.Outcome.BestDistance)
	}
}

func (suite *ragBladeTestSuite) TestRetrieveEmptyCorpus() {
	suite.collection.result = vector.QueryResult{}

	result, err := suite.svc.Retrieve(suite.ctx, "query")
	suite.NoError(err)

	suite.Equal(NoRelevantInformation, result.Text)
	suite.False(result.Outcome.RejectedByHardThreshold)
}

func (suite *ragBladeTestSuite) TestRetrieveDegenerateResponse() {
	// A store response without distance information skips filtering
	// entirely and passes candidates through.
	suite.collection.result = vector.QueryResult{
		IDs:       []string{"a", "b"},
		Documents: []string{"first", "second"},
	}

	result, err := suite.svc.Retrieve(suite.ctx, "query", 2)
	suite.NoError(err)

	suite.Equal("first\n\nsecond", result.Text)
	suite.False(result.Outcome.HardThresholdApplied)
	suite.Equal(2, result.Outcome.KeptCount)
}

func (suite *ragBladeTestSuite) TestRetrieveLengthBudget() {
	long := strings.Repeat("a", 800)
	medium := strings.Repeat("b", 400)
	short := "short and sweet"

	suite.collection.result = queryResult(
		[]string{long, medium, short},
		[]float64{0.1, 0.12, 0.14},
	)

	result, err := suite.svc.Retrieve(suite.ctx, "query", 3)
	suite.NoError(err)

	parts := strings.Split(result.Text, "\n\n")
	if suite.Len(parts, 2) {
		suite.Equal(long, parts[0])

		// The second document is truncated to the remaining 200-char
		// budget, and nothing follows a truncated document.
		suite.Equal(strings.Repeat("b", 200)+"...", parts[1])
		suite.NotContains(result.Text, short)
	}
}

func (suite *ragBladeTestSuite) TestRetrieveSkipsUselessPartial() {
	long := strings.Repeat("a", 950)
	medium := strings.Repeat("b", 400)

	suite.collection.result = queryResult(
		[]string{long, medium},
		[]float64{0.1, 0.12},
	)

	result, err := suite.svc.Retrieve(suite.ctx, "query", 2)
	suite.NoError(err)

	// Only 50 chars of budget remain, below the partial-inclusion slack.
	suite.Equal(long, result.Text)
}

func (suite *ragBladeTestSuite) TestRetrieveStoreFailure() {
	suite.collection.err = errors.New("connection lost")

	_, err := suite.svc.Retrieve(suite.ctx, "query")
	suite.EqualError(err, "connection lost")
}

func (suite *ragBladeTestSuite) TestRetrieveEmptyQuery() {
	_, err := suite.svc.Retrieve(suite.ctx, "   ")
	suite.ErrorIs(err, ErrEmptyQuery)
}

func (suite *ragBladeTestSuite) TestAsk() {
	suite.collection.result = queryResult(
		[]string{"llamas sleep standing up"},
		[]float64{0.1},
	)

	answer, err := suite.svc.Ask(suite.ctx, "how do llamas sleep?")
	suite.NoError(err)

	suite.Equal("generated answer", answer)
	suite.Contains(suite.generator.lastPrompt, "Using this data: llamas sleep standing up")
	suite.Contains(suite.generator.lastPrompt, "Respond to this prompt: how do llamas sleep?")
}

func (suite *ragBladeTestSuite) TestAskWithoutRelevantContext() {
	suite.collection.result = queryResult(
		[]string{"far"},
		[]float64{1.8},
	)

	answer, err := suite.svc.Ask(suite.ctx, "how do llamas sleep?")
	suite.NoError(err)

	suite.Equal("generated answer", answer)

	// With nothing relevant the prompt passes through unwrapped.
	suite.Equal("how do llamas sleep?", suite.generator.lastPrompt)
}

func TestRAGBladeTestSuite(t *testing.T) {
	suite.Run(t, new(ragBladeTestSuite))
}
