// Package mcpserver exposes the chapter registry over the Model Context
// Protocol so assistants can read the book and walk its chapters.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zzats/elixirtut/internal/book"
	"github.com/zzats/elixirtut/internal/metrics"
)

// IndexURI is the resource holding the table of contents
const IndexURI = "book://index"

// maxPromptContent caps how much chapter text goes into a prompt
const maxPromptContent = 10000

// Server answers MCP requests from a registry
type Server struct {
	reg     *book.Registry[book.Document]
	metrics *metrics.Metrics
}

// New creates a Server. m may be nil.
func New(reg *book.Registry[book.Document], m *metrics.Metrics) *Server {
	return &Server{reg: reg, metrics: m}
}

// MCPServer registers all tools, resources and prompts
func (s *Server) MCPServer(name, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
	)

	// ============================================
	// TOOLS
	// ============================================

	srv.AddTool(
		mcp.NewTool("list_chapters",
			mcp.WithDescription("List all chapters of the book in reading order with number, title, completion and path."),
		),
		s.count("list_chapters", s.handleListChapters),
	)

	srv.AddTool(
		mcp.NewTool("read_chapter",
			mcp.WithDescription("Read the markdown of one chapter, addressed by path or number."),
			chapterPath(),
			chapterNumber(),
		),
		s.count("read_chapter", s.handleReadChapter),
	)

	srv.AddTool(
		mcp.NewTool("previous_chapter",
			mcp.WithDescription("Get the chapter before the given one. Returns an empty list for the first chapter."),
			chapterPath(),
			chapterNumber(),
		),
		s.count("previous_chapter", s.handlePreviousChapter),
	)

	srv.AddTool(
		mcp.NewTool("next_chapter",
			mcp.WithDescription("Get the chapter after the given one. Returns an empty list for the last chapter."),
			chapterPath(),
			chapterNumber(),
		),
		s.count("next_chapter", s.handleNextChapter),
	)

	// ============================================
	// RESOURCES
	// ============================================

	srv.AddResource(
		mcp.NewResource(
			IndexURI,
			"Book Index",
			mcp.WithResourceDescription("Table of contents with every chapter's number, title, completion and path"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleIndexResource,
	)

	// ============================================
	// PROMPTS
	// ============================================

	srv.AddPrompt(
		mcp.NewPrompt("summarize_chapter",
			mcp.WithPromptDescription("Get a summary of a specific chapter of the book"),
			mcp.WithArgument("path",
				mcp.ArgumentDescription("The chapter path, e.g. '/pattern_matching'"),
				mcp.RequiredArgument(),
			),
		),
		s.handleSummarizeChapterPrompt,
	)

	return srv
}

func chapterPath() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Description("Chapter route path, e.g. '/basic_types'"),
	)
}

func chapterNumber() mcp.ToolOption {
	return mcp.WithNumber("number",
		mcp.Description("1-based chapter number, used when path is empty"),
	)
}

// count records every call of a tool handler
func (s *Server) count(tool string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := next(ctx, req)
		if s.metrics != nil {
			result := "ok"
			if err != nil || (res != nil && res.IsError) {
				result = "error"
			}
			s.metrics.MCPToolCallsTotal.WithLabelValues(tool, result).Inc()
		}
		return res, err
	}
}

// resolve finds the chapter named by the path or number arguments
func (s *Server) resolve(req mcp.CallToolRequest) (book.Chapter[book.Document], error) {
	if path := req.GetString("path", ""); path != "" {
		return s.reg.Lookup(path)
	}
	if number := req.GetInt("number", 0); number != 0 {
		return s.reg.At(number)
	}
	return book.Chapter[book.Document]{}, errors.New("path or number is required")
}

// ============================================
// TOOL HANDLERS
// ============================================

func (s *Server) handleListChapters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(book.Index(s.reg).Chapters)
}

func (s *Server) handleReadChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := s.resolve(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error reading chapter: %v", err)), nil
	}

	response := fmt.Sprintf("Chapter %d (%s done)\n\n%s", chapter.Number, chapter.Completion, chapter.Content.Markdown)
	return mcp.NewToolResultText(response), nil
}

func (s *Server) handlePreviousChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.navigate(req, s.reg.Previous)
}

func (s *Server) handleNextChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.navigate(req, s.reg.Next)
}

type navigateFunc func(book.Chapter[book.Document]) ([]book.Chapter[book.Document], error)

func (s *Server) navigate(req mcp.CallToolRequest, step navigateFunc) (*mcp.CallToolResult, error) {
	current, err := s.resolve(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error finding chapter: %v", err)), nil
	}
	neighbours, err := step(current)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error navigating: %v", err)), nil
	}

	summaries := make([]book.Summary, 0, len(neighbours))
	for _, ch := range neighbours {
		summaries = append(summaries, book.Summarize(ch))
	}
	return jsonResult(summaries)
}

// ============================================
// RESOURCE HANDLERS
// ============================================

func (s *Server) handleIndexResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	indexJSON, err := json.MarshalIndent(book.Index(s.reg), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding book index: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(indexJSON),
		},
	}, nil
}

// ============================================
// PROMPT HANDLERS
// ============================================

func (s *Server) handleSummarizeChapterPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	path := req.Params.Arguments["path"]
	if path == "" {
		return promptResult("Error: path is required", "Please provide a chapter path to summarize."), nil
	}

	chapter, err := s.reg.Lookup(path)
	if err != nil {
		return promptResult(fmt.Sprintf("Error: %v", err), fmt.Sprintf("Could not find chapter: %s", path)), nil
	}

	// Limit content if too long
	content := chapter.Content.Markdown
	if len(content) > maxPromptContent {
		content = truncate(content, maxPromptContent) + "\n\n... [content truncated]"
	}

	promptText := fmt.Sprintf(`Please summarize chapter %d of the Elixir tutorial, "%s".

%s

Include:
1. Main concepts covered
2. Key takeaways
3. Short code examples`, chapter.Number, chapter.Title, content)

	return promptResult(fmt.Sprintf("Summary of '%s'", chapter.Title), promptText), nil
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(result)), nil
}
