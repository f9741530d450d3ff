package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// CompleteWorkflowInput represents the MCP tool input for the combined
// email-to-signing workflow.
type CompleteWorkflowInput struct {
	EmailContent   string            `json:"email_content" jsonschema:"raw text of the notification email"`
	RecipientEmail string            `json:"recipient_email,omitempty" jsonschema:"signer email; overrides anything derived from the email content"`
	FieldData      map[string]string `json:"field_data,omitempty" jsonschema:"optional field values to fill before signing"`
	ReturnURL      string            `json:"return_url,omitempty" jsonschema:"URL the signer lands on after the ceremony"`
}

// WorkflowStepResult reports one attempted stage of the combined workflow.
type WorkflowStepResult struct {
	Success      bool     `json:"success" jsonschema:"whether the stage succeeded"`
	Error        string   `json:"error,omitempty" jsonschema:"machine-readable error code, present on failure"`
	Message      string   `json:"message,omitempty" jsonschema:"human-readable explanation, present on failure"`
	EnvelopeIDs  []string `json:"envelope_ids,omitempty" jsonschema:"envelope identifiers found during extraction"`
	AccessCodes  []string `json:"access_codes,omitempty" jsonschema:"access codes found during extraction"`
	SigningURL   string   `json:"signing_url,omitempty" jsonschema:"embedded signing session URL"`
	FilledFields []string `json:"filled_fields,omitempty" jsonschema:"names of the fields actually filled"`
}

// WorkflowFinalResults summarizes what the combined workflow established.
type WorkflowFinalResults struct {
	EnvelopeID       string `json:"envelope_id,omitempty" jsonschema:"envelope the workflow operated on"`
	AccessCode       string `json:"access_code,omitempty" jsonschema:"access code used for the signing session"`
	SigningURL       string `json:"signing_url,omitempty" jsonschema:"embedded signing session URL"`
	SigningCompleted bool   `json:"signing_completed" jsonschema:"true when the signing step completed"`
}

// CompleteWorkflowResult represents the MCP tool output for the combined
// workflow. Steps holds only the stages that actually ran, keyed by stage
// name.
type CompleteWorkflowResult struct {
	ToolStatus
	Steps        map[string]WorkflowStepResult `json:"steps" jsonschema:"per-stage outcomes keyed by stage name; unreached stages are absent"`
	FinalResults WorkflowFinalResults          `json:"final_results" jsonschema:"summary of what the workflow established"`
}

// CompleteWorkflowTool defines the MCP tool schema for the combined
// workflow.
func CompleteWorkflowTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "complete_workflow",
		Description: "Runs extraction, signing session creation, optional field filling, and the signing step from raw email text in one call",
	}
}
