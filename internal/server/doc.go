// Package server implements an MCP (Model Context Protocol) server that
// exposes vehicle detection as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
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
//   - car_find_image: Detect vehicles in one still image
//   - car_find_frame: Detect vehicles in the next frame of a named stream
//   - car_reset_stream: Drop a stream's heat history
//   - car_config: Report the configuration in effect and the open streams
//
// # Streams
//
// Every stream name owns its own finder and therefore its own heat history.
// Streams are created on their first frame and live until reset. Still
// images go through a shared finder in single mode, which never touches
// history.
//
// Still images are cached by path for the lifetime of the server, so
// repeated calls on one image skip decoding. Stream frames are not cached.
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
//	srv, err := server.New(cfg, builder, clf, server.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server
