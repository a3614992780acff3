// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/assetload/core"
	"github.com/huangsam/assetload/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the assetload MCP server without starting it.
// Every tool shares engine, so the in-memory cache survives across calls.
func NewMCPServer(baseCfg *contract.Config, engine *core.Engine, target contract.RenderTarget, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Asset Loading Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		engine:  engine,
		target:  target,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("preload_images",
		mcp.WithDescription("Prefetch remote images in parallel and warm the shared cache. Failed slots have a null uri."),
		mcp.WithArray("keys", mcp.Description("Resource URIs to preload."), mcp.Required(), mcp.Items(map[string]any{"type": "string"})),
	), h.handlePreloadImages)

	s.AddTool(mcp.NewTool("load_resource",
		mcp.WithDescription("Load one remote image with retry and caching, and report its final state."),
		mcp.WithString("uri", mcp.Description("Resource URI to load."), mcp.Required()),
		mcp.WithNumber("retry_limit", mcp.Description("Retries after the first attempt. Defaults to the server setting.")),
		mcp.WithBoolean("no_cache", mcp.Description("Bypass the shared cache for this load.")),
		mcp.WithArray("headers", mcp.Description("Request headers as Name=Value pairs."), mcp.Items(map[string]any{"type": "string"})),
	), h.handleLoadResource)

	s.AddTool(mcp.NewTool("get_cache_stats",
		mcp.WithDescription("Report the size and capacity of the shared cache."),
	), h.handleGetCacheStats)

	s.AddTool(mcp.NewTool("clear_cache",
		mcp.WithDescription("Remove every entry from the shared cache."),
	), h.handleClearCache)

	s.AddTool(mcp.NewTool("get_journal_status",
		mcp.WithDescription("Summarize the load journal: record counts by outcome and origin."),
	), h.handleGetJournalStatus)

	return s
}

// StartMCPServer starts the assetload MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, engine *core.Engine, target contract.RenderTarget, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, engine, target, mgr)
	return server.ServeStdio(s)
}
