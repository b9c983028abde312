package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/huangsam/dailyxp/core"
	"github.com/huangsam/dailyxp/core/daily"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
// writeMu covers the load, modify and save cycle of every mutating tool.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.StoreManager
	writeMu sync.Mutex
}

// dayConfig clones the base config for the optional date argument.
func (h *toolHandler) dayConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if s := request.GetString("date", ""); s != "" {
		date, err := contract.ParseDate(s, time.Now())
		if err != nil {
			return nil, err
		}
		cfg.Date = date
	}
	return cfg, nil
}

func (h *toolHandler) handleScanDay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.dayConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	h.writeMu.Lock()
	outcome, err := core.GetScanResults(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr)
	h.writeMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	return jsonResult(outcome)
}

func (h *toolHandler) handleAddAccomplishment(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.dayConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	entry := daily.ManualEntry{
		Title:    request.GetString("title", ""),
		Type:     request.GetString("type", ""),
		Category: schema.Category(strings.ToLower(request.GetString("category", ""))),
		Words:    request.GetInt("words", 0),
	}
	if shipped, ok := request.GetArguments()["shipped"].(bool); ok {
		entry.Shipped = &shipped
	}
	h.writeMu.Lock()
	acc, outcome, err := core.AddAccomplishment(cfg, h.mgr, entry)
	h.writeMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("add accomplishment failed: %v", err)), nil
	}
	return jsonResult(changeResult{Item: acc, Stats: outcome.Record.Stats, Profiles: outcome.Profiles})
}

func (h *toolHandler) handleLogTokens(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.dayConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	in := daily.ManualTokens{
		Model:            request.GetString("model", ""),
		InputTokens:      int64(request.GetInt("input_tokens", 0)),
		OutputTokens:     int64(request.GetInt("output_tokens", 0)),
		CacheReadTokens:  int64(request.GetInt("cache_read_tokens", 0)),
		CacheWriteTokens: int64(request.GetInt("cache_write_tokens", 0)),
		Context:          request.GetString("context", ""),
	}
	if cost, ok := request.GetArguments()["cost"].(float64); ok {
		in.Cost = &cost
	}
	h.writeMu.Lock()
	entry, outcome, err := core.AddTokens(cfg, h.mgr, in)
	h.writeMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("log tokens failed: %v", err)), nil
	}
	return jsonResult(changeResult{Item: entry, Stats: outcome.Record.Stats, Profiles: outcome.Profiles})
}

func (h *toolHandler) handleAddTodo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.dayConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	priority := schema.Priority(strings.ToLower(request.GetString("priority", string(schema.MediumPriority))))
	h.writeMu.Lock()
	todo, outcome, err := core.AddTodo(cfg, h.mgr, request.GetString("task", ""), priority)
	h.writeMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("add todo failed: %v", err)), nil
	}
	return jsonResult(changeResult{Item: todo, Stats: outcome.Record.Stats, Profiles: outcome.Profiles})
}

func (h *toolHandler) handleCompleteTodo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.dayConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	h.writeMu.Lock()
	todo, outcome, err := core.CompleteTodo(cfg, h.mgr, id)
	h.writeMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("complete todo failed: %v", err)), nil
	}
	return jsonResult(changeResult{Item: todo, Stats: outcome.Record.Stats, Profiles: outcome.Profiles})
}

func (h *toolHandler) handleListNext(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.dayConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	next, err := core.GetNextResults(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list next failed: %v", err)), nil
	}
	return jsonResult(next)
}

func (h *toolHandler) handleWeekSummary(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.dayConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	days := request.GetInt("days", core.WeekDays)
	summary, err := core.GetWeekResults(cfg, h.mgr, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("week summary failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (h *toolHandler) handleGetProfile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	version := schema.EngineVersion(strings.ToLower(request.GetString("version", "")))
	profiles, err := core.GetProfileResults(cfg, h.mgr, version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get profile failed: %v", err)), nil
	}
	return jsonResult(profiles)
}

func (h *toolHandler) handleGetPricing(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(core.GetPricingResults(h.baseCfg))
}

type changeResult struct {
	Item     any              `json:"item"`
	Stats    schema.Stats     `json:"stats"`
	Profiles []schema.Profile `json:"profiles"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
