package domain

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkflow/signbridge/internal/esign"
	"github.com/inkflow/signbridge/internal/pdf"
	"github.com/inkflow/signbridge/internal/platform/errors"
	"github.com/inkflow/signbridge/internal/workflow"
)

func okStatus() ToolStatus {
	return ToolStatus{Success: true}
}

func failStatus(err error) ToolStatus {
	return ToolStatus{
		Success: false,
		Error:   string(errors.CodeOf(err)),
		Message: errors.MessageOf(err),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func envelopeResultFrom(env esign.Envelope) EnvelopeResult {
	result := EnvelopeResult{
		ToolStatus:    okStatus(),
		EnvelopeID:    env.EnvelopeID,
		Status:        string(env.Status),
		CreatedDate:   formatTimestamp(env.CreatedAt),
		SentDate:      formatTimestamp(env.SentAt),
		CompletedDate: formatTimestamp(env.CompletedAt),
	}
	for _, recipient := range env.Recipients {
		result.Recipients = append(result.Recipients, RecipientResult{
			Email:    recipient.Email,
			Name:     recipient.Name,
			Status:   recipient.Status,
			SignedAt: formatTimestamp(recipient.SignedAt),
		})
	}
	return result
}

// GetEnvelopeHandler creates a handler that resolves an envelope reference
// and reports status and recipients.
func GetEnvelopeHandler(ctrl *workflow.Controller, audit AuditRecorder) mcp.ToolHandlerFor[GetEnvelopeInput, EnvelopeResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetEnvelopeInput) (*mcp.CallToolResult, EnvelopeResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, EnvelopeResult{}, err
		}

		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		var result EnvelopeResult
		env, err := ctrl.GetEnvelope(callCtx, workflow.Reference{
			EnvelopeID:   input.EnvelopeID,
			Link:         input.Link,
			SecurityCode: input.SecurityCode,
		})
		if err != nil {
			result.ToolStatus = failStatus(err)
			result.EnvelopeID = input.EnvelopeID
		} else {
			result = envelopeResultFrom(env)
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "get_envelope",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
			EnvelopeID:   result.EnvelopeID,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}

// FillEnvelopeHandler creates a handler that fills document fields on a
// sent envelope.
func FillEnvelopeHandler(ctrl *workflow.Controller, audit AuditRecorder) mcp.ToolHandlerFor[FillEnvelopeInput, FillEnvelopeResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input FillEnvelopeInput) (*mcp.CallToolResult, FillEnvelopeResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, FillEnvelopeResult{}, err
		}

		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		result := FillEnvelopeResult{EnvelopeID: input.EnvelopeID}
		filled, err := ctrl.FillEnvelope(callCtx, input.EnvelopeID, input.FieldData)
		if err != nil {
			result.ToolStatus = failStatus(err)
		} else {
			result.ToolStatus = okStatus()
			result.FilledFields = filled
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "fill_envelope",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
			EnvelopeID:   input.EnvelopeID,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}

// SignEnvelopeHandler creates a handler that starts an embedded signing
// session, or reports signing status when no security code is supplied.
func SignEnvelopeHandler(ctrl *workflow.Controller, audit AuditRecorder) mcp.ToolHandlerFor[SignEnvelopeInput, SignEnvelopeResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SignEnvelopeInput) (*mcp.CallToolResult, SignEnvelopeResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, SignEnvelopeResult{}, err
		}

		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		result := SignEnvelopeResult{EnvelopeID: input.EnvelopeID}
		outcome, err := ctrl.SignEnvelope(callCtx, input.EnvelopeID, input.RecipientEmail, input.SecurityCode, input.ReturnURL)
		if err != nil {
			result.ToolStatus = failStatus(err)
		} else {
			result.ToolStatus = okStatus()
			result.Status = string(outcome.Envelope.Status)
			result.SigningURL = outcome.SigningURL
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "sign_envelope",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
			EnvelopeID:   input.EnvelopeID,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}

// SubmitEnvelopeHandler creates a handler that finalizes a signed envelope.
func SubmitEnvelopeHandler(ctrl *workflow.Controller, audit AuditRecorder) mcp.ToolHandlerFor[SubmitEnvelopeInput, SubmitEnvelopeResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SubmitEnvelopeInput) (*mcp.CallToolResult, SubmitEnvelopeResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, SubmitEnvelopeResult{}, err
		}

		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		result := SubmitEnvelopeResult{EnvelopeID: input.EnvelopeID}
		env, err := ctrl.SubmitEnvelope(callCtx, input.EnvelopeID)
		if err != nil {
			result.ToolStatus = failStatus(err)
		} else {
			result.ToolStatus = okStatus()
			result.Status = string(env.Status)
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "submit_envelope",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
			EnvelopeID:   input.EnvelopeID,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}

// SendForSignatureHandler creates a handler that fetches a PDF and sends it
// to a recipient for signature.
func SendForSignatureHandler(ctrl *workflow.Controller, audit AuditRecorder) mcp.ToolHandlerFor[SendForSignatureInput, SendForSignatureResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SendForSignatureInput) (*mcp.CallToolResult, SendForSignatureResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, SendForSignatureResult{}, err
		}

		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		var result SendForSignatureResult
		data, err := pdf.Fetch(callCtx, input.FileURL)
		if err != nil {
			result.ToolStatus = failStatus(err)
		} else {
			envelopeID, sendErr := ctrl.SendForSignature(callCtx, workflow.SendRequest{
				Document: esign.Document{
					Name:   pdf.BaseName(input.FileURL),
					Base64: base64.StdEncoding.EncodeToString(data),
				},
				RecipientEmail: input.RecipientEmail,
				RecipientName:  input.RecipientName,
				Subject:        input.Subject,
				Message:        input.Message,
			})
			if sendErr != nil {
				result.ToolStatus = failStatus(sendErr)
			} else {
				result.ToolStatus = okStatus()
				result.EnvelopeID = envelopeID
			}
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "send_for_signature",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
			EnvelopeID:   result.EnvelopeID,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}
