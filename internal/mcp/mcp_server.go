// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfglab/yieldline/internal/contract"
)

// NewMCPServer initializes and configures the Yieldline MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Yieldline Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_yield_summary ---
	s.AddTool(mcp.NewTool("get_yield_summary",
		mcp.WithDescription("Compute first-pass-yield counts and rates over a time window."),
		mcp.WithString("station", mcp.Description("Test-station filter (e.g. TSP-E). Matches all stations when omitted.")),
		mcp.WithString("start", mcp.Description("Window start, absolute ISO8601 or relative like '7 days ago'.")),
		mcp.WithString("end", mcp.Description("Window end, absolute ISO8601 or relative like '1 hour ago'.")),
	), h.handleGetYieldSummary)

	// --- 2. Tool: get_daily_trend ---
	s.AddTool(mcp.NewTool("get_daily_trend",
		mcp.WithDescription("Compute per-day first-pass-yield buckets over a time window."),
		mcp.WithString("station", mcp.Description("Test-station filter. Matches all stations when omitted.")),
		mcp.WithString("start", mcp.Description("Window start, absolute ISO8601 or relative like '7 days ago'.")),
		mcp.WithString("end", mcp.Description("Window end, absolute ISO8601 or relative like '1 hour ago'.")),
	), h.handleGetDailyTrend)

	// --- 3. Tool: get_top_failures ---
	s.AddTool(mcp.NewTool("get_top_failures",
		mcp.WithDescription("Rank FAIL attempts over a time window by carrier, fixture or failure message."),
		mcp.WithString("dimension", mcp.Description("Breakdown dimension."), mcp.Required(), mcp.Enum("carrier", "fixture", "failure")),
		mcp.WithString("station", mcp.Description("Test-station filter. Matches all stations when omitted.")),
		mcp.WithString("start", mcp.Description("Window start, absolute ISO8601 or relative like '7 days ago'.")),
		mcp.WithString("end", mcp.Description("Window end, absolute ISO8601 or relative like '1 hour ago'.")),
		mcp.WithString("fixture", mcp.Description("Restrict to one fixture before grouping.")),
		mcp.WithString("failure_message", mcp.Description("Restrict to one failure message before grouping.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetTopFailures)

	// --- 4. Tool: get_fail_categories ---
	s.AddTool(mcp.NewTool("get_fail_categories",
		mcp.WithDescription("Rank categorized failure sub-categories over a time window, excluding confirmed-fail units."),
		mcp.WithString("start", mcp.Description("Window start, absolute ISO8601 or relative like '7 days ago'.")),
		mcp.WithString("end", mcp.Description("Window end, absolute ISO8601 or relative like '1 hour ago'.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetFailCategories)

	return s
}

// StartMCPServer starts the Yieldline MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
