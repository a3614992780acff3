package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/assetload/core"
	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	engine  *core.Engine
	target  contract.RenderTarget
	mgr     contract.StoreManager
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handlePreloadImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := request.GetStringSlice("keys", nil)
	if len(keys) == 0 {
		return mcp.NewToolResultError("keys must contain at least one URI"), nil
	}
	return jsonResult(h.engine.PreloadImages(ctx, keys))
}

func (h *toolHandler) handleLoadResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri := request.GetString("uri", "")
	if uri == "" {
		return mcp.NewToolResultError("uri is required"), nil
	}

	cfg := h.baseCfg.Clone()
	if limit := request.GetInt("retry_limit", -1); limit >= 0 {
		if limit > contract.MaxRetryLimit {
			return mcp.NewToolResultError(fmt.Sprintf("retry_limit must be between 0 and %d", contract.MaxRetryLimit)), nil
		}
		cfg.RetryLimit = limit
	}
	if request.GetBool("no_cache", false) {
		cfg.EnableCache = false
	}
	if pairs := request.GetStringSlice("headers", nil); len(pairs) > 0 {
		headers, err := contract.ParseHeaders(pairs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid headers: %v", err)), nil
		}
		cfg.Headers = headers
	}

	// Tool calls have no viewport to wait for
	opts := cfg.LoadOptions(uri)
	opts.EnableLazy = false

	res := h.engine.Fetch(ctx, h.target, opts)

	type labeledResult struct {
		Label string `json:"label"`
		schema.FetchResult
	}
	return jsonResult(labeledResult{Label: contract.GetPlainLabel(res), FetchResult: res})
}

func (h *toolHandler) handleGetCacheStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.engine.GetCacheStats())
}

func (h *toolHandler) handleClearCache(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.engine.ClearCache()
	return mcp.NewToolResultText("Cache cleared"), nil
}

func (h *toolHandler) handleGetJournalStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil {
		return mcp.NewToolResultError("load journal is not initialized"), nil
	}
	store := h.mgr.GetJournalStore()
	if store == nil {
		return mcp.NewToolResultError("load journal is not initialized"), nil
	}
	status, err := store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get journal status: %v", err)), nil
	}
	return jsonResult(status)
}
