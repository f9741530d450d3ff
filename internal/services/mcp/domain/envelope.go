package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ToolStatus is embedded in every tool result so callers always see the
// same success/error surface.
type ToolStatus struct {
	Success bool   `json:"success" jsonschema:"whether the operation succeeded"`
	Error   string `json:"error,omitempty" jsonschema:"machine-readable error code, present on failure"`
	Message string `json:"message,omitempty" jsonschema:"human-readable explanation of the outcome"`
}

// GetEnvelopeInput represents the MCP tool input for envelope lookup.
// Exactly one reference should be provided; envelope_id wins over link.
type GetEnvelopeInput struct {
	EnvelopeID   string `json:"envelope_id,omitempty" jsonschema:"envelope identifier"`
	Link         string `json:"link,omitempty" jsonschema:"signing link containing a /documents/ segment"`
	SecurityCode string `json:"security_code,omitempty" jsonschema:"access code from the notification email; lookup by code alone is not supported"`
}

// RecipientResult represents one envelope recipient in MCP output.
type RecipientResult struct {
	Email    string `json:"email" jsonschema:"recipient email"`
	Name     string `json:"name" jsonschema:"recipient display name"`
	Status   string `json:"status" jsonschema:"recipient signing status"`
	SignedAt string `json:"signed_at,omitempty" jsonschema:"RFC3339 timestamp when the recipient signed"`
}

// EnvelopeResult represents the MCP tool output for envelope lookup.
type EnvelopeResult struct {
	ToolStatus
	EnvelopeID    string            `json:"envelope_id,omitempty" jsonschema:"envelope identifier"`
	Status        string            `json:"status,omitempty" jsonschema:"envelope lifecycle status"`
	CreatedDate   string            `json:"created_date,omitempty" jsonschema:"RFC3339 timestamp when the envelope was created"`
	SentDate      string            `json:"sent_date,omitempty" jsonschema:"RFC3339 timestamp when the envelope was sent"`
	CompletedDate string            `json:"completed_date,omitempty" jsonschema:"RFC3339 timestamp when the envelope completed"`
	Recipients    []RecipientResult `json:"recipients,omitempty" jsonschema:"envelope recipients"`
}

// FillEnvelopeInput represents the MCP tool input for filling envelope fields.
type FillEnvelopeInput struct {
	EnvelopeID string            `json:"envelope_id" jsonschema:"envelope identifier"`
	FieldData  map[string]string `json:"field_data" jsonschema:"field name to value map; names match document tab labels case-insensitively"`
}

// FillEnvelopeResult represents the MCP tool output for filling envelope fields.
type FillEnvelopeResult struct {
	ToolStatus
	EnvelopeID   string   `json:"envelope_id,omitempty" jsonschema:"envelope identifier"`
	FilledFields []string `json:"filled_fields,omitempty" jsonschema:"names of the fields actually filled"`
}

// SignEnvelopeInput represents the MCP tool input for starting a signing session.
type SignEnvelopeInput struct {
	EnvelopeID     string `json:"envelope_id" jsonschema:"envelope identifier"`
	RecipientEmail string `json:"recipient_email,omitempty" jsonschema:"signer email; defaults to the envelope's first recipient"`
	SecurityCode   string `json:"security_code,omitempty" jsonschema:"access code; without it the tool reports status only"`
	ReturnURL      string `json:"return_url,omitempty" jsonschema:"URL the signer lands on after the ceremony"`
}

// SignEnvelopeResult represents the MCP tool output for starting a signing session.
type SignEnvelopeResult struct {
	ToolStatus
	EnvelopeID string `json:"envelope_id,omitempty" jsonschema:"envelope identifier"`
	Status     string `json:"status,omitempty" jsonschema:"envelope lifecycle status"`
	SigningURL string `json:"signing_url,omitempty" jsonschema:"embedded signing session URL, present when a security code was supplied"`
}

// SubmitEnvelopeInput represents the MCP tool input for final submission.
type SubmitEnvelopeInput struct {
	EnvelopeID string `json:"envelope_id" jsonschema:"envelope identifier"`
}

// SubmitEnvelopeResult represents the MCP tool output for final submission.
type SubmitEnvelopeResult struct {
	ToolStatus
	EnvelopeID string `json:"envelope_id,omitempty" jsonschema:"envelope identifier"`
	Status     string `json:"status,omitempty" jsonschema:"envelope lifecycle status after submission"`
}

// SendForSignatureInput represents the MCP tool input for sending a document.
type SendForSignatureInput struct {
	FileURL        string `json:"file_url" jsonschema:"http(s) URL or local path of the PDF to send"`
	RecipientEmail string `json:"recipient_email" jsonschema:"signer email"`
	RecipientName  string `json:"recipient_name" jsonschema:"signer display name"`
	Subject        string `json:"subject,omitempty" jsonschema:"optional email subject"`
	Message        string `json:"message,omitempty" jsonschema:"optional email body"`
}

// SendForSignatureResult represents the MCP tool output for sending a document.
type SendForSignatureResult struct {
	ToolStatus
	EnvelopeID string `json:"envelope_id,omitempty" jsonschema:"identifier of the newly created envelope"`
}

// GetEnvelopeTool defines the MCP tool schema for envelope lookup.
func GetEnvelopeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_envelope",
		Description: "Looks up an envelope by envelope_id or signing link and reports its status and recipients",
	}
}

// FillEnvelopeTool defines the MCP tool schema for filling envelope fields.
func FillEnvelopeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "fill_envelope",
		Description: "Fills document fields on a sent envelope. Not idempotent: repeating the call rewrites field values",
	}
}

// SignEnvelopeTool defines the MCP tool schema for signing sessions.
func SignEnvelopeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sign_envelope",
		Description: "Creates an embedded signing session for a sent or delivered envelope when a security code is supplied; otherwise reports signing status",
	}
}

// SubmitEnvelopeTool defines the MCP tool schema for final submission.
func SubmitEnvelopeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "submit_envelope",
		Description: "Finalizes a signed envelope. Submitting an already completed envelope is a safe no-op",
	}
}

// SendForSignatureTool defines the MCP tool schema for sending a document.
func SendForSignatureTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "send_for_signature",
		Description: "Sends a PDF to a recipient for signature and returns the new envelope identifier",
	}
}
