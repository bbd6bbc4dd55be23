package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/ragblade"

	mcpE "github.com/flarexio/ragblade/mcp"
)

func AddRouters(r *gin.Engine, endpoints ragblade.EndpointSet) {
	// RESTful API routes
	api := r.Group("/api")
	{
		api.POST("/context", AddContextHandler(endpoints.AddContext))
		api.DELETE("/context", ClearContextHandler(endpoints.ClearContext))
		api.GET("/info", CollectionInfoHandler(endpoints.CollectionInfo))
		api.GET("/retrieve", RetrieveHandler(endpoints.Retrieve))
		api.POST("/ask", AskHandler(endpoints.Ask))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("/", MCPStreamableHandler(endpoints))
	}
}
