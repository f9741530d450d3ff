package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkflow/signbridge/internal/extract"
	"github.com/inkflow/signbridge/internal/platform/errors"
)

// ExtractAccessCodeHandler creates a handler that scans email text for
// access codes. Extraction is local; no backend call is made.
func ExtractAccessCodeHandler(audit AuditRecorder) mcp.ToolHandlerFor[ExtractAccessCodeInput, ExtractAccessCodeResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExtractAccessCodeInput) (*mcp.CallToolResult, ExtractAccessCodeResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, ExtractAccessCodeResult{}, err
		}

		var result ExtractAccessCodeResult
		codes := extract.AccessCodes(input.EmailContent)
		if len(codes) == 0 {
			result.ToolStatus = failStatus(errors.New(errors.CodeExtractionEmpty,
				"no access code found in the email content"))
		} else {
			result.ToolStatus = okStatus()
			result.AccessCode = codes[0]
			result.AllCodes = codes
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "extract_access_code",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}

// ExtractEnvelopeDataHandler creates a handler that scans email text for
// envelope identifiers and access codes in one pass.
func ExtractEnvelopeDataHandler(audit AuditRecorder) mcp.ToolHandlerFor[ExtractEnvelopeDataInput, ExtractEnvelopeDataResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExtractEnvelopeDataInput) (*mcp.CallToolResult, ExtractEnvelopeDataResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, ExtractEnvelopeDataResult{}, err
		}

		var result ExtractEnvelopeDataResult
		candidates := extract.Extract(input.EmailContent)
		if len(candidates.EnvelopeIDs) == 0 && len(candidates.AccessCodes) == 0 {
			result.ToolStatus = failStatus(errors.New(errors.CodeExtractionEmpty,
				"no envelope identifier or access code found in the email content"))
		} else {
			result.ToolStatus = okStatus()
			result.EnvelopeIDs = candidates.EnvelopeIDs
			result.AccessCodes = candidates.AccessCodes
			if len(candidates.EnvelopeIDs) > 0 {
				result.EnvelopeID = candidates.EnvelopeIDs[0]
			}
			if len(candidates.AccessCodes) > 0 {
				result.AccessCode = candidates.AccessCodes[0]
			}
			result.ReadyForWorkflow = result.EnvelopeID != "" && result.AccessCode != ""
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "extract_envelope_and_access_code",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
			EnvelopeID:   result.EnvelopeID,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}
