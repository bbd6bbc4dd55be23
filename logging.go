package ragblade

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "ragblade"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}

func (mw *loggingMiddleware) AddContext(ctx context.Context, content string, source ...string) error {
	log := mw.log.With(
		zap.String("action", "add_context"),
		zap.Int("length", len(content)),
	)

	if len(source) > 0 && source[0] != "" {
		log = log.With(
			zap.String("source", source[0]),
		)
	}

	err := mw.next.AddContext(ctx, content, source...)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("context added")
	return nil
}

func (mw *loggingMiddleware) ClearContext(ctx context.Context) error {
	log := mw.log.With(
		zap.String("action", "clear_context"),
	)

	err := mw.next.ClearContext(ctx)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("context cleared")
	return nil
}

func (mw *loggingMiddleware) CollectionInfo(ctx context.Context) (CollectionInfo, error) {
	log := mw.log.With(
		zap.String("action", "collection_info"),
	)

	info, err := mw.next.CollectionInfo(ctx)
	if err != nil {
		log.Error(err.Error())
		return CollectionInfo{}, err
	}

	log.Info("collection info", zap.Int("count", info.Count))
	return info, nil
}

func (mw *loggingMiddleware) Retrieve(ctx context.Context, query string, k ...int) (*RetrievalResult, error) {
	var n int
	if len(k) > 0 {
		n = k[0]
	}

	log := mw.log.With(
		zap.String("action", "retrieve"),
		zap.String("query", query),
	)

	if n > 0 {
		log = log.With(
			zap.Int("k", n),
		)
	}

	result, err := mw.next.Retrieve(ctx, query, k...)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log = log.With(
		zap.Int("original", result.Outcome.OriginalCount),
		zap.Int("kept", result.Outcome.KeptCount),
	)

	if result.Outcome.RejectedByHardThreshold {
		log.Info("retrieval rejected by hard threshold")
	} else {
		log.Info("documents retrieved")
	}

	return result, nil
}

func (mw *loggingMiddleware) Ask(ctx context.Context, prompt string) (string, error) {
	log := mw.log.With(
		zap.String("action", "ask"),
		zap.String("prompt", prompt),
	)

	answer, err := mw.next.Ask(ctx, prompt)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("answer generated", zap.Int("length", len(answer)))
	return answer, nil
}
