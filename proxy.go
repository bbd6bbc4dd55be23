package ragblade

import (
	"context"
	"errors"
)

func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) Close() error {
	return errors.New("method not implemented")
}

func (mw *proxyMiddleware) AddContext(ctx context.Context, content string, source ...string) error {
	req := AddContextRequest{
		Content: content,
	}

	if len(source) > 0 {
		req.Source = source[0]
	}

	_, err := mw.endpoints.AddContext(ctx, req)
	return err
}

func (mw *proxyMiddleware) ClearContext(ctx context.Context) error {
	_, err := mw.endpoints.ClearContext(ctx, nil)
	return err
}

func (mw *proxyMiddleware) CollectionInfo(ctx context.Context) (CollectionInfo, error) {
	resp, err := mw.endpoints.CollectionInfo(ctx, nil)
	if err != nil {
		return CollectionInfo{}, err
	}

	info, ok := resp.(CollectionInfo)
	if !ok {
		return CollectionInfo{}, errors.New("invalid response type")
	}

	return info, nil
}

func (mw *proxyMiddleware) Retrieve(ctx context.Context, query string, k ...int) (*RetrievalResult, error) {
	req := RetrieveRequest{
		Query: query,
	}

	if len(k) > 0 {
		req.K = k[0]
	}

	resp, err := mw.endpoints.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	result, ok := resp.(*RetrievalResult)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return result, nil
}

func (mw *proxyMiddleware) Ask(ctx context.Context, prompt string) (string, error) {
	req := AskRequest{
		Prompt: prompt,
	}

	resp, err := mw.endpoints.Ask(ctx, req)
	if err != nil {
		return "", err
	}

	answer, ok := resp.(AskResponse)
	if !ok {
		return "", errors.New("invalid response type")
	}

	return answer.Answer, nil
}
