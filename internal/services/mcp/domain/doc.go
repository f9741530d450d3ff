// Package domain translates MCP tool calls into envelope workflow commands.
//
// The package is intentionally explicit about that mapping:
// - parse MCP tool input into workflow requests,
// - route calls through the envelope workflow controller,
// - and surface structured success/error outputs that MCP clients can render.
//
// Domain failures never surface as protocol errors; every tool returns a
// result with success, error code, and message fields so a calling agent
// can react to the failure instead of seeing a broken call. Protocol
// errors are reserved for infrastructure failures such as id generation.
package domain
