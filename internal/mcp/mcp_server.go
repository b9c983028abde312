// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the dailyxp MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Daily XP Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}
	dateArg := mcp.WithString("date", mcp.Description("Target day as YYYY-MM-DD (defaults to today)."))

	s.AddTool(mcp.NewTool("scan_day",
		mcp.WithDescription("Scan git, content and agent transcripts for a day and update its record and profiles."),
		dateArg,
	), h.handleScanDay)

	s.AddTool(mcp.NewTool("add_accomplishment",
		mcp.WithDescription("Record a manual accomplishment. Manual entries survive later scans."),
		mcp.WithString("title", mcp.Description("What was accomplished."), mcp.Required()),
		mcp.WithString("type", mcp.Description("Accomplishment type from the points table (defaults to 'manual').")),
		mcp.WithString("category", mcp.Description("Override the category."), mcp.Enum("builder", "scribe", "strategist")),
		mcp.WithNumber("words", mcp.Description("Words written.")),
		mcp.WithBoolean("shipped", mcp.Description("Whether the work shipped (defaults by type).")),
		dateArg,
	), h.handleAddAccomplishment)

	s.AddTool(mcp.NewTool("log_tokens",
		mcp.WithDescription("Record agent token usage that was not captured automatically."),
		mcp.WithString("model", mcp.Description("Model name or alias (defaults to the configured model).")),
		mcp.WithNumber("input_tokens", mcp.Description("Input tokens.")),
		mcp.WithNumber("output_tokens", mcp.Description("Output tokens.")),
		mcp.WithNumber("cache_read_tokens", mcp.Description("Cache read tokens.")),
		mcp.WithNumber("cache_write_tokens", mcp.Description("Cache write tokens.")),
		mcp.WithNumber("cost", mcp.Description("Explicit cost in USD; overrides pricing.")),
		mcp.WithString("context", mcp.Description("Free text describing the session.")),
		dateArg,
	), h.handleLogTokens)

	s.AddTool(mcp.NewTool("add_todo",
		mcp.WithDescription("Add a todo. Open todos carry over to the next day."),
		mcp.WithString("task", mcp.Description("The task."), mcp.Required()),
		mcp.WithString("priority", mcp.Description("Priority (defaults to 'medium')."), mcp.Enum("high", "medium", "low")),
		dateArg,
	), h.handleAddTodo)

	s.AddTool(mcp.NewTool("complete_todo",
		mcp.WithDescription("Mark a todo as done by ID or unique ID prefix."),
		mcp.WithString("id", mcp.Description("Todo ID or unique prefix."), mcp.Required()),
		dateArg,
	), h.handleCompleteTodo)

	s.AddTool(mcp.NewTool("list_next",
		mcp.WithDescription("List pending todos, highest priority first, and active drafts."),
		dateArg,
	), h.handleListNext)

	s.AddTool(mcp.NewTool("week_summary",
		mcp.WithDescription("Summarize the days ending on the target day."),
		mcp.WithNumber("days", mcp.Description("Window length in days (defaults to 7).")),
		dateArg,
	), h.handleWeekSummary)

	s.AddTool(mcp.NewTool("get_profile",
		mcp.WithDescription("Get progression profiles for one or every engine version."),
		mcp.WithString("version", mcp.Description("Engine version (omit for all)."), mcp.Enum("v1", "v2", "v3")),
	), h.handleGetProfile)

	s.AddTool(mcp.NewTool("get_pricing",
		mcp.WithDescription("Get the effective per-model pricing in USD per million tokens."),
	), h.handleGetPricing)

	return s
}

// StartMCPServer starts the dailyxp MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, client, mgr)
	return server.ServeStdio(s)
}
