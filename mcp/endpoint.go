package mcp

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/ragblade"
)

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      mcp.RequestId   `json:"id"`
	Method  mcp.MCPMethod   `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func errorResponse(id any, code int, message string) mcp.JSONRPCError {
	return mcp.JSONRPCError{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      mcp.NewRequestId(id),
		Error: struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    any    `json:"data,omitempty"`
		}{
			Code:    code,
			Message: message,
		},
	}
}

type MCPEndpoint func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage

const MCPSERVER_INSTRUCTIONS string = `RAGBlade stores free-text context in a vector collection and retrieves the passages relevant to a query, providing:

1. **Context Memory**: Add text passages that later queries can draw on
2. **Semantic Retrieval**: Distance-filtered nearest-neighbor search over the stored context
3. **Grounded Answers**: Ask questions answered with the retrieved context

Available tools:
- add_context: Store a text passage
- clear_context: Remove all stored passages
- collection_info: Report the collection name and document count
- retrieve: Fetch the passages relevant to a query
- ask: Answer a question using the stored context

Retrieval applies adaptive distance filtering, so only passages close enough to the query are used.`

// Tools is the static tool surface this server exposes.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("add_context",
			mcp.WithDescription("Store a text passage in the context collection."),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("The text to store."),
			),
			mcp.WithString("source",
				mcp.Description("Label for where the content came from."),
			),
		),
		mcp.NewTool("clear_context",
			mcp.WithDescription("Remove every passage from the context collection."),
		),
		mcp.NewTool("collection_info",
			mcp.WithDescription("Report the context collection name and document count."),
		),
		mcp.NewTool("retrieve",
			mcp.WithDescription("Retrieve the passages relevant to a query, reduced by distance filtering."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Free-text query."),
			),
			mcp.WithNumber("k",
				mcp.Description("Number of passages to return."),
			),
		),
		mcp.NewTool("ask",
			mcp.WithDescription("Answer a question using the stored context."),
			mcp.WithString("prompt",
				mcp.Required(),
				mcp.Description("The question to answer."),
			),
		),
	}
}

func InitializeEndpoint(svc ragblade.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.InitializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		protocolVersion := mcp.LATEST_PROTOCOL_VERSION
		if clientVersion := params.ProtocolVersion; clientVersion != "" {
			if slices.Contains(mcp.ValidProtocolVersions, clientVersion) {
				protocolVersion = clientVersion
			}
		}

		result := &mcp.InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: mcp.ServerCapabilities{
				Tools: &struct {
					ListChanged bool `json:"listChanged,omitempty"`
				}{},
			},
			ServerInfo: mcp.Implementation{
				Name:    "ragblade",
				Version: "1.0.0",
			},
			Instructions: MCPSERVER_INSTRUCTIONS,
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func PingEndpoint(svc ragblade.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  struct{}{}, // empty response
		}
	}
}

func ListToolsEndpoint(svc ragblade.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		result := &mcp.ListToolsResult{
			Tools: Tools(),
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func CallToolEndpoint(svc ragblade.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		args, _ := params.Arguments.(map[string]any)

		result, err := callTool(ctx, svc, params.Name, args)
		if err != nil {
			return errorResponse(req.ID, mcp.INTERNAL_ERROR, err.Error())
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func callTool(ctx context.Context, svc ragblade.Service, name string, args map[string]any) (*mcp.CallToolResult, error) {
	switch name {
	case "add_context":
		content, _ := args["content"].(string)
		source, _ := args["source"].(string)

		if err := svc.AddContext(ctx, content, source); err != nil {
			return nil, err
		}

		return mcp.NewToolResultText("context added"), nil

	case "clear_context":
		if err := svc.ClearContext(ctx); err != nil {
			return nil, err
		}

		return mcp.NewToolResultText("context cleared"), nil

	case "collection_info":
		info, err := svc.CollectionInfo(ctx)
		if err != nil {
			return nil, err
		}

		bs, err := json.Marshal(&info)
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(string(bs)), nil

	case "retrieve":
		query, _ := args["query"].(string)

		k := 0
		if v, ok := args["k"].(float64); ok {
			k = int(v)
		}

		result, err := svc.Retrieve(ctx, query, k)
		if err != nil {
			return nil, err
		}

		bs, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(string(bs)), nil

	case "ask":
		prompt, _ := args["prompt"].(string)

		answer, err := svc.Ask(ctx, prompt)
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(answer), nil

	default:
		return mcp.NewToolResultError("unknown tool: " + name), nil
	}
}
