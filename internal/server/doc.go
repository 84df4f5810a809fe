// Package server exposes the well profiler as MCP tools over stdio and as a
// small JSON HTTP API.
//
// # Protocol
//
// The MCP server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - plate_load: Load a frame and report its size, format and intensity range
//   - plate_sample_wells: Aligned intensity profile per well
//   - plate_annotate: Frame with scan regions and labels drawn
//   - plate_plot_profiles: Line chart of the profiles
//   - plate_read_id: OCR of the plate label
//
// Arguments left unset take their values from the server's config.Config,
// so a deployment can fix the grid and scan geometry once in wellscan.yml.
//
// # HTTP
//
// Router serves the same tools at POST /tools/{name}, taking the tool
// arguments as the JSON request body and returning the tool result directly
// rather than wrapped in MCP content.
//
// # Image Caching
//
// The server keeps decoded frames in an imaging.ImageCache keyed by path and
// reuses them across calls. The cache persists for the lifetime of the
// server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
