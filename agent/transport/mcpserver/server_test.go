package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

func newRegistry(t *testing.T) *toolx.Registry {
	t.Helper()
	table, err := toolx.NewRoadmapTable([]toolx.RoadmapEntry{
		{Field: "data science", Steps: []string{"Learn Python", "Study statistics"}},
	})
	require.NoError(t, err)
	reg := toolx.NewRegistry()
	require.NoError(t, toolx.RegisterRoadmap(reg, table))
	return reg
}

func TestToolForCopiesSpec(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	specs := reg.Specs([]string{toolx.ToolCareerRoadmap})
	require.Len(t, specs, 1)

	tool := toolFor(specs[0])
	assert.Equal(t, toolx.ToolCareerRoadmap, tool.Name)
	assert.Equal(t, specs[0].Description, tool.Description)
	for _, p := range specs[0].Params {
		assert.Contains(t, tool.InputSchema.Properties, p.Name)
		if p.Required {
			assert.Contains(t, tool.InputSchema.Required, p.Name)
		}
	}
}

func TestHandlerInvokesRegistry(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	srv := New(reg, "test")
	require.NotNil(t, srv.MCP())

	param := reg.Specs([]string{toolx.ToolCareerRoadmap})[0].Params[0].Name
	req := mcp.CallToolRequest{}
	req.Params.Name = toolx.ToolCareerRoadmap
	req.Params.Arguments = map[string]any{param: "Data Science"}

	res, err := srv.handler(toolx.ToolCareerRoadmap)(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Learn Python")
}

func TestHandlerUnknownTool(t *testing.T) {
	t.Parallel()

	srv := New(toolx.NewRegistry(), "test")
	res, err := srv.handler("nope")(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
