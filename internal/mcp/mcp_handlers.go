package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfglab/yieldline/core"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// windowedConfig clones the base config and applies the request's window and
// station overrides.
func (h *toolHandler) windowedConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if s := request.GetString("station", ""); s != "" {
		cfg.Station = s
	}
	if err := contract.RevalidateWindow(cfg, request.GetString("start", ""), request.GetString("end", "")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *toolHandler) handleGetYieldSummary(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.windowedConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}

	summary, err := core.GetYieldSummary(h.mgr.GetOutcomeStore(), cfg.Station, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("yield summary failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetDailyTrend(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.windowedConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}

	trend, err := core.GetDailyTrend(h.mgr.GetOutcomeStore(), cfg.Station, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("daily trend failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(trend, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetTopFailures(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.windowedConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}

	dim := schema.Dimension(request.GetString("dimension", ""))
	if _, ok := schema.ValidDimensions[dim]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid dimension '%s'. must be carrier, fixture, failure", dim)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	query := schema.TopQuery{
		Start:          cfg.StartTime,
		End:            cfg.EndTime,
		Station:        cfg.Station,
		Fixture:        request.GetString("fixture", ""),
		FailureMessage: request.GetString("failure_message", ""),
		Limit:          cfg.ResultLimit,
	}
	counts, err := h.mgr.GetRecordStore().TopCounts(dim, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("top breakdown failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(counts, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFailCategories(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.windowedConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	counts, err := core.TopFailCategories(h.mgr.GetRecordStore(), h.mgr.GetFailStore(),
		cfg.StartTime, cfg.EndTime, cfg.ResultLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("category breakdown failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(counts, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
