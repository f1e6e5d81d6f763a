package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/research-assistant/pkg/research/tools"
)

func connectMCP(t *testing.T, ts *tools.ResearchToolset, allowSave bool) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := NewMCPServer(ts, "test", allowSave).Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "test"}, nil).Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func toolNames(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	list, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestMCPServerWithoutSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	ts := tools.NewResearchToolset(tools.NewWebSearcher(5), tools.NewWikipedia("en", 100), tools.NewFileSaver(path))
	cs := connectMCP(t, ts, false)

	assert.ElementsMatch(t, []string{"search", "wikipedia"}, toolNames(t, cs))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "save_text_to_file",
		Arguments: map[string]any{"text": "notes"},
	})
	if err == nil {
		assert.True(t, res.IsError)
	}
	assert.NoFileExists(t, path)
}

func TestMCPServerTools(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.txt")
	ts := tools.NewResearchToolset(tools.NewWebSearcher(5), tools.NewWikipedia("en", 100), tools.NewFileSaver(path))
	cs := connectMCP(t, ts, true)

	assert.ElementsMatch(t, []string{"search", "wikipedia", "save_text_to_file"}, toolNames(t, cs))

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "save_text_to_file",
		Arguments: map[string]any{"text": "notes"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Data successfully saved to "+path, text.Text)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "notes")
}
