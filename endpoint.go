package ragblade

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	AddContext     endpoint.Endpoint
	ClearContext   endpoint.Endpoint
	CollectionInfo endpoint.Endpoint
	Retrieve       endpoint.Endpoint
	Ask            endpoint.Endpoint
}

type AddContextRequest struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

func AddContextEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(AddContextRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		err := svc.AddContext(ctx, req.Content, req.Source)
		return nil, err
	}
}

func ClearContextEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		err := svc.ClearContext(ctx)
		return nil, err
	}
}

func CollectionInfoEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		return svc.CollectionInfo(ctx)
	}
}

type RetrieveRequest struct {
	Query string `json:"query" form:"query"`
	K     int    `json:"k,omitempty" form:"k"`
}

func RetrieveEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(RetrieveRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.Retrieve(ctx, req.Query, req.K)
	}
}

type AskRequest struct {
	Prompt string `json:"prompt"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

func AskEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(AskRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		answer, err := svc.Ask(ctx, req.Prompt)
		if err != nil {
			return nil, err
		}

		return AskResponse{Answer: answer}, nil
	}
}
