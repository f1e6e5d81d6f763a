package server

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/research-assistant/pkg/research/tools"
)

// NewMCPServer exposes the research tools over the Model Context Protocol.
// The save tool writes to the server's disk and is only added when allowSave
// is set.
func NewMCPServer(ts *tools.ResearchToolset, version string, allowSave bool) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "research-assistant", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.SearchToolName,
		Description: tools.SearchToolDescription,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args tools.SearchArgs) (*mcp.CallToolResult, tools.SearchResp, error) {
		resp, err := ts.Search(ctx, args)
		if err != nil {
			return nil, tools.SearchResp{}, err
		}
		return textResult(resp.Results), resp, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.WikipediaToolName,
		Description: tools.WikipediaToolDescription,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args tools.WikipediaArgs) (*mcp.CallToolResult, tools.WikipediaResp, error) {
		resp, err := ts.LookupWikipedia(ctx, args)
		if err != nil {
			return nil, tools.WikipediaResp{}, err
		}
		return textResult(resp.Content), resp, nil
	})

	if !allowSave {
		return server
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.SaveToFileToolName,
		Description: tools.SaveToFileToolDescription,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args tools.SaveArgs) (*mcp.CallToolResult, tools.SaveResp, error) {
		resp, err := ts.SaveToFile(ctx, args)
		if err != nil {
			return nil, tools.SaveResp{}, err
		}
		return textResult(resp.Message), resp, nil
	})

	return server
}

// NewMCPHandler serves server over streamable HTTP.
func NewMCPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
