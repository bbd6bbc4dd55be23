package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/ragblade"
)

func AddEndpoints(group micro.Group, endpoints ragblade.EndpointSet) {
	group.AddEndpoint("add_context", AddContextHandler(endpoints.AddContext))
	group.AddEndpoint("clear_context", ClearContextHandler(endpoints.ClearContext))
	group.AddEndpoint("collection_info", CollectionInfoHandler(endpoints.CollectionInfo))
	group.AddEndpoint("retrieve", RetrieveHandler(endpoints.Retrieve))
	group.AddEndpoint("ask", AskHandler(endpoints.Ask))
}
