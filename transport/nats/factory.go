package nats

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/ragblade"
)

func MakeEndpoints(nc *nats.Conn, prefix string) *ragblade.EndpointSet {
	return &ragblade.EndpointSet{
		AddContext:     AddContextEndpoint(nc, prefix+".add_context"),
		ClearContext:   ClearContextEndpoint(nc, prefix+".clear_context"),
		CollectionInfo: CollectionInfoEndpoint(nc, prefix+".collection_info"),
		Retrieve:       RetrieveEndpoint(nc, prefix+".retrieve"),
		Ask:            AskEndpoint(nc, prefix+".ask"),
	}
}

func AddContextEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ragblade.AddContextRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		return string(resp.Data), nil
	}
}

func ClearContextEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		resp, err := nc.Request(topic, nil, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		return string(resp.Data), nil
	}
}

func CollectionInfoEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		resp, err := nc.Request(topic, nil, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var info ragblade.CollectionInfo
		if err := json.Unmarshal(resp.Data, &info); err != nil {
			return nil, err
		}

		return info, nil
	}
}

func RetrieveEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ragblade.RetrieveRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var result ragblade.RetrievalResult
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, err
		}

		return &result, nil
	}
}

func AskEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ragblade.AskRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(resp); err != nil {
			return nil, err
		}

		var answer ragblade.AskResponse
		if err := json.Unmarshal(resp.Data, &answer); err != nil {
			return nil, err
		}

		return answer, nil
	}
}

func Error(msg *nats.Msg) error {
	if msg == nil {
		return errors.New("nil message")
	}

	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}

	description := msg.Header.Get(micro.ErrorHeader)
	if description == "" {
		description = "unknown error"
	}

	return errors.New(code + ":" + description)
}
