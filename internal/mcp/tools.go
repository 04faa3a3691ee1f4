package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/syedkumailraza2/buildboard/internal/extract"
	"github.com/syedkumailraza2/buildboard/internal/popup"
)

func (s *MCPServer) registerTools() {
	generateTool := mcp.NewTool("generate_project_idea",
		mcp.WithDescription("Generate a single software project idea for a difficulty level"),
		mcp.WithString("difficulty",
			mcp.Description("Difficulty level, e.g. easy, medium, hard (default easy)"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerateIdea)

	extractTool := mcp.NewTool("extract_json",
		mcp.WithDescription("Extract the first JSON object from free-form model output, tolerating code fences and prose"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text that contains a JSON object"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractJSON)

	recentTool := mcp.NewTool("recent_ideas",
		mcp.WithDescription("List recently generated project ideas"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of ideas to return (default 10)"),
		),
	)
	s.mcpServer.AddTool(recentTool, s.handleRecentIdeas)
}

func (s *MCPServer) handleGenerateIdea(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	difficulty := request.GetString("difficulty", "")

	var capture popup.Capture
	out := s.controller.Generate(ctx, difficulty, &capture)

	switch out.Kind {
	case popup.KindIdea:
		return mcp.NewToolResultText(formatIdea(out.Idea)), nil
	case popup.KindInvalid:
		return mcp.NewToolResultError(fmt.Sprintf("%s\n\n%s", popup.InvalidHeading, capture.Raw)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate idea: %v", out.Err)), nil
	}
}

func (s *MCPServer) handleExtractJSON(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text parameter required"), nil
	}

	r := extract.Extract(text)
	if !r.OK() {
		msg := fmt.Sprintf("no JSON extracted (%s)", r.Status)
		if r.Err != nil {
			msg += ": " + r.Err.Error()
		}
		return mcp.NewToolResultError(msg), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Value); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *MCPServer) handleRecentIdeas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultError("idea history is not enabled"), nil
	}

	limit := int(request.GetFloat("limit", 10))
	records, err := s.history.GetRecentIdeas(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}
	return mcp.NewToolResultText(formatRecords(records)), nil
}
