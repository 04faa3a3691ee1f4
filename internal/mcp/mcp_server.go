// Package mcp exposes idea generation and JSON extraction as MCP tools.
package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/syedkumailraza2/buildboard/internal/database"
	"github.com/syedkumailraza2/buildboard/internal/idea"
	"github.com/syedkumailraza2/buildboard/internal/popup"
)

// History lists stored ideas.
type History interface {
	GetRecentIdeas(limit int) ([]database.Record, error)
}

// MCPServer wraps the MCP server with the idea controller and history.
type MCPServer struct {
	controller *popup.Controller
	history    History
	mcpServer  *server.MCPServer
}

// NewMCPServer creates a new MCP server instance. history may be nil, in
// which case recent_ideas reports that no history is available.
func NewMCPServer(controller *popup.Controller, history History, version string) *MCPServer {
	s := &MCPServer{
		controller: controller,
		history:    history,
	}

	s.mcpServer = server.NewMCPServer(
		"buildboard",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerTools()

	return s
}

// Server returns the underlying MCP server
func (s *MCPServer) Server() *server.MCPServer {
	return s.mcpServer
}

// formatIdea formats an idea as markdown
func formatIdea(i idea.Idea) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", i.Title)
	fmt.Fprintf(&b, "%s\n", i.Description)
	if len(i.Tags) > 0 {
		fmt.Fprintf(&b, "\n**Tags**: %s\n", strings.Join(i.Tags, ", "))
	}
	return b.String()
}

// formatRecords formats history records as markdown
func formatRecords(records []database.Record) string {
	if len(records) == 0 {
		return "# Recent ideas\n\nNo ideas recorded yet."
	}

	var b strings.Builder
	b.WriteString("# Recent ideas\n\n")
	fmt.Fprintf(&b, "%d idea(s)\n", len(records))

	for _, r := range records {
		if r.Status == database.StatusInvalid {
			fmt.Fprintf(&b, "\n## (unparseable response)\n- **Difficulty**: %s\n", r.Difficulty)
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", r.Title)
		fmt.Fprintf(&b, "- **Difficulty**: %s\n", r.Difficulty)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&b, "- **Tags**: %s\n", strings.Join(r.Tags, ", "))
		}
		if r.CreatedAt != nil {
			fmt.Fprintf(&b, "- **Created**: %s\n", *r.CreatedAt)
		}
	}
	return b.String()
}
