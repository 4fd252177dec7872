// Package mcpserver exposes the line parser to agents as MCP tools over
// stdio.
package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dani3/rash/internal/cli"
	"github.com/dani3/rash/internal/lint"
	"github.com/dani3/rash/internal/pipeline"
)

const serverName = "rash"

type handlers struct {
	env *cli.Env
}

// New builds an MCP server whose tools parse and lint lines through env.
// Results are rendered with env's printer, so callers normally give it a
// JSON printer.
func New(env *cli.Env, version string) *server.MCPServer {
	h := &handlers{env: env}
	s := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("parse_line",
		mcp.WithDescription("Parse one shell command line into pipeline stages, "+
			"redirections and the background flag. Returns the parse result "+
			"with any lint warnings, or the parse error with its position."),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("The command line, e.g. \"cat in | sort > out &\". Redirects follow the last stage"),
		),
	), h.parseLine)

	s.AddTool(mcp.NewTool("lint_line",
		mcp.WithDescription("Parse a shell command line and return only the lint "+
			"warnings for it. An empty list means nothing suspicious was found."),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("The command line to check"),
		),
	), h.lintLine)

	s.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the active lint rules with their descriptions."),
	), h.listRules)

	return s
}

// Serve runs srv on the given streams until ctx is cancelled or in reaches
// EOF.
func Serve(ctx context.Context, srv *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(srv)
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (h *handlers) parseLine(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := req.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var stdout, stderr bytes.Buffer
	if !h.env.Eval(line, &stdout, &stderr) {
		return mcp.NewToolResultError(stderr.String()), nil
	}
	return mcp.NewToolResultText(stdout.String()), nil
}

func (h *handlers) lintLine(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := req.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	p, err := pipeline.Parse(line)
	if err != nil {
		if rerr := h.env.Printer.RenderError(&buf, line, err); rerr != nil {
			return nil, rerr
		}
		return mcp.NewToolResultError(buf.String()), nil
	}
	var warnings []lint.Warning
	if h.env.Lint != nil {
		warnings = h.env.Lint.Check(line, p)
	}
	if err := h.env.Printer.RenderWarnings(&buf, warnings); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *handlers) listRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.env.Lint == nil {
		return mcp.NewToolResultText("lint is disabled\n"), nil
	}
	var b strings.Builder
	for _, r := range h.env.Lint.Rules() {
		fmt.Fprintf(&b, "%-26s %s\n", r.ID, r.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}
