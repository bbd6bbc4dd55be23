package nats

import (
	"context"
	"encoding/json"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/ragblade"
)

func AddContextHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req ragblade.AddContextRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		_, err := endpoint(ctx, req)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		r.Respond([]byte("OK"))
	}
}

func ClearContextHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		ctx := context.Background()
		_, err := endpoint(ctx, nil)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		r.Respond([]byte("OK"))
	}
}

func CollectionInfoHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		ctx := context.Background()
		resp, err := endpoint(ctx, nil)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		info, ok := resp.(ragblade.CollectionInfo)
		if !ok {
			r.Error("500", "invalid response type", nil)
			return
		}

		r.RespondJSON(&info)
	}
}

func RetrieveHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req ragblade.RetrieveRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		result, ok := resp.(*ragblade.RetrievalResult)
		if !ok {
			r.Error("500", "invalid response type", nil)
			return
		}

		r.RespondJSON(result)
	}
}

func AskHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req ragblade.AskRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		answer, ok := resp.(ragblade.AskResponse)
		if !ok {
			r.Error("500", "invalid response type", nil)
			return
		}

		r.RespondJSON(&answer)
	}
}
