package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkflow/signbridge/internal/platform/id"
)

// invocationIDMetaKey carries the invocation identifier in tool result
// metadata so clients can correlate calls with audit records.
const invocationIDMetaKey = "signbridge/invocation_id"

// ToolCallMetadata carries correlation identifiers for MCP tool calls.
type ToolCallMetadata struct {
	InvocationID string
}

// NewInvocationID generates an invocation identifier for a tool call.
func NewInvocationID() (string, error) {
	return id.NewID()
}

// CallToolResultWithMetadata builds a tool result with correlation metadata.
func CallToolResultWithMetadata(meta ToolCallMetadata) *mcp.CallToolResult {
	result := &mcp.CallToolResult{Meta: map[string]any{}}
	if meta.InvocationID != "" {
		result.Meta[invocationIDMetaKey] = meta.InvocationID
	}
	return result
}

// AuditEvent describes one completed tool invocation for the audit log.
type AuditEvent struct {
	Tool         string
	InvocationID string
	Success      bool
	ErrorCode    string
	EnvelopeID   string
}

// AuditRecorder persists audit events. A nil recorder disables auditing.
type AuditRecorder func(ctx context.Context, event AuditEvent)

// RecordAudit forwards an event to the recorder when one is configured.
func RecordAudit(ctx context.Context, record AuditRecorder, event AuditEvent) {
	if record == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	record(ctx, event)
}
