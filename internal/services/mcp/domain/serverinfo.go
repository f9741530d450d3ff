package domain

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerInfo describes the running server for discovery by calling agents.
type ServerInfo struct {
	Name        string `json:"name" jsonschema:"server name"`
	Version     string `json:"version" jsonschema:"server version"`
	Environment string `json:"environment" jsonschema:"signature provider environment, demo or production"`
	BaseURL     string `json:"base_url" jsonschema:"signature provider API base URL"`
}

// GetServerInfoInput represents the MCP tool input for server discovery.
// The tool takes no arguments.
type GetServerInfoInput struct{}

// GetServerInfoResult represents the MCP tool output for server discovery.
type GetServerInfoResult struct {
	ToolStatus
	ServerInfo
}

// GetServerInfoTool defines the MCP tool schema for server discovery.
func GetServerInfoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_server_info",
		Description: "Reports the server name, version, and which signature provider environment it talks to",
	}
}

// GetServerInfoHandler creates a handler that reports server identity and
// environment.
func GetServerInfoHandler(info ServerInfo) mcp.ToolHandlerFor[GetServerInfoInput, GetServerInfoResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetServerInfoInput) (*mcp.CallToolResult, GetServerInfoResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, GetServerInfoResult{}, err
		}
		result := GetServerInfoResult{
			ToolStatus: okStatus(),
			ServerInfo: info,
		}
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}

// ServerInfoResource defines the static server discovery resource.
func ServerInfoResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "server-info",
		Title:       "Server Information",
		Description: "Server identity and the signature provider environment it talks to",
		MIMEType:    "application/json",
		URI:         "signbridge://server-info",
	}
}

// ServerInfoResourceHandler serves the server discovery resource.
func ServerInfoResourceHandler(info ServerInfo) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		payload, err := json.Marshal(info)
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(payload),
			}},
		}, nil
	}
}
