package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ExtractAccessCodeInput represents the MCP tool input for access code
// extraction.
type ExtractAccessCodeInput struct {
	EmailContent string `json:"email_content" jsonschema:"raw text of the notification email"`
}

// ExtractAccessCodeResult represents the MCP tool output for access code
// extraction.
type ExtractAccessCodeResult struct {
	ToolStatus
	AccessCode string   `json:"access_code,omitempty" jsonschema:"first access code found"`
	AllCodes   []string `json:"all_codes,omitempty" jsonschema:"every distinct access code in discovery order"`
}

// ExtractEnvelopeDataInput represents the MCP tool input for combined
// envelope and access code extraction.
type ExtractEnvelopeDataInput struct {
	EmailContent string `json:"email_content" jsonschema:"raw text of the notification email"`
}

// ExtractEnvelopeDataResult represents the MCP tool output for combined
// envelope and access code extraction.
type ExtractEnvelopeDataResult struct {
	ToolStatus
	EnvelopeID       string   `json:"envelope_id,omitempty" jsonschema:"first envelope identifier found"`
	AccessCode       string   `json:"access_code,omitempty" jsonschema:"first access code found"`
	EnvelopeIDs      []string `json:"envelope_ids,omitempty" jsonschema:"every distinct envelope identifier in discovery order"`
	AccessCodes      []string `json:"access_codes,omitempty" jsonschema:"every distinct access code in discovery order"`
	ReadyForWorkflow bool     `json:"ready_for_workflow" jsonschema:"true when both an envelope identifier and an access code were found"`
}

// ExtractAccessCodeTool defines the MCP tool schema for access code
// extraction.
func ExtractAccessCodeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "extract_access_code",
		Description: "Extracts access codes from notification email text",
	}
}

// ExtractEnvelopeDataTool defines the MCP tool schema for combined
// extraction.
func ExtractEnvelopeDataTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "extract_envelope_and_access_code",
		Description: "Extracts envelope identifiers and access codes from notification email text in one pass",
	}
}
