package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkflow/signbridge/internal/platform/errors"
	"github.com/inkflow/signbridge/internal/workflow"
)

// CompleteWorkflowHandler creates a handler that runs the combined
// email-to-signing workflow.
func CompleteWorkflowHandler(ctrl *workflow.Controller, audit AuditRecorder) mcp.ToolHandlerFor[CompleteWorkflowInput, CompleteWorkflowResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CompleteWorkflowInput) (*mcp.CallToolResult, CompleteWorkflowResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, CompleteWorkflowResult{}, err
		}

		callCtx, cancel := context.WithTimeout(ctx, workflowToolTimeout)
		defer cancel()

		run := ctrl.CompleteWorkflow(callCtx, workflow.WorkflowRequest{
			EmailContent:   input.EmailContent,
			RecipientEmail: input.RecipientEmail,
			Fields:         input.FieldData,
			ReturnURL:      input.ReturnURL,
		})

		result := CompleteWorkflowResult{
			Steps: make(map[string]WorkflowStepResult, len(run.Steps)),
			FinalResults: WorkflowFinalResults{
				EnvelopeID:       run.Final.EnvelopeID,
				AccessCode:       run.Final.AccessCode,
				SigningURL:       run.Final.SigningURL,
				SigningCompleted: run.Final.SigningCompleted,
			},
		}
		for _, step := range run.Steps {
			result.Steps[string(step.Step)] = WorkflowStepResult{
				Success:      step.Success,
				Error:        string(step.Code),
				Message:      step.Message,
				EnvelopeIDs:  step.EnvelopeIDs,
				AccessCodes:  step.AccessCodes,
				SigningURL:   step.SigningURL,
				FilledFields: step.FilledFields,
			}
		}
		if run.Success {
			result.ToolStatus = okStatus()
		} else {
			result.ToolStatus = workflowFailure(run)
		}

		RecordAudit(ctx, audit, AuditEvent{
			Tool:         "complete_workflow",
			InvocationID: invocationID,
			Success:      result.Success,
			ErrorCode:    result.Error,
			EnvelopeID:   run.Final.EnvelopeID,
		})
		return CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID}), result, nil
	}
}

// workflowFailure surfaces the first failed stage as the run's error.
func workflowFailure(run workflow.Result) ToolStatus {
	for _, step := range run.Steps {
		if !step.Success {
			return ToolStatus{Error: string(step.Code), Message: step.Message}
		}
	}
	return ToolStatus{Error: string(errors.CodeUnknown), Message: "workflow did not complete"}
}
