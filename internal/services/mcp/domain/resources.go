package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkflow/signbridge/internal/workflow"
)

// EnvelopeResourceTemplate defines the readable per-envelope resource.
func EnvelopeResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "envelope",
		Title:       "Envelope",
		Description: "Envelope status and recipients, refreshed from the signature provider on every read",
		MIMEType:    "application/json",
		URITemplate: "envelope://{envelope_id}",
	}
}

// parseEnvelopeIDFromURI extracts the envelope ID from a URI of the form
// envelope://{envelope_id}. It rejects URIs with extra path segments, query
// parameters, or fragments.
func parseEnvelopeIDFromURI(uri string) (string, error) {
	prefix := "envelope://"

	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("URI must start with %q", prefix)
	}

	envelopeID := strings.TrimSpace(strings.TrimPrefix(uri, prefix))
	if envelopeID == "" {
		return "", fmt.Errorf("envelope ID is required in URI")
	}
	if strings.ContainsAny(envelopeID, "/?#") {
		return "", fmt.Errorf("URI must not contain path segments, query parameters, or fragments after the envelope ID")
	}

	return envelopeID, nil
}

// EnvelopeResourceHandler returns a readable single envelope resource.
func EnvelopeResourceHandler(ctrl *workflow.Controller) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if ctrl == nil {
			return nil, fmt.Errorf("envelope controller is not configured")
		}

		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("envelope ID is required; use URI format envelope://{envelope_id}")
		}
		uri := req.Params.URI

		envelopeID, err := parseEnvelopeIDFromURI(uri)
		if err != nil {
			return nil, fmt.Errorf("parse envelope ID from URI: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		env, err := ctrl.GetEnvelope(callCtx, workflow.Reference{EnvelopeID: envelopeID})
		if err != nil {
			return nil, fmt.Errorf("get envelope failed: %w", err)
		}

		payload := envelopeResultFrom(env)
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal envelope: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
