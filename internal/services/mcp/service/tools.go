package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkflow/signbridge/internal/services/mcp/domain"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

func registerEnvelopeTools(registrar mcpRegistrationTarget, deps Deps) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.GetEnvelopeTool(), handler: domain.GetEnvelopeHandler(deps.Controller, deps.Audit)},
		{tool: domain.FillEnvelopeTool(), handler: domain.FillEnvelopeHandler(deps.Controller, deps.Audit)},
		{tool: domain.SignEnvelopeTool(), handler: domain.SignEnvelopeHandler(deps.Controller, deps.Audit)},
		{tool: domain.SubmitEnvelopeTool(), handler: domain.SubmitEnvelopeHandler(deps.Controller, deps.Audit)},
		{tool: domain.SendForSignatureTool(), handler: domain.SendForSignatureHandler(deps.Controller, deps.Audit)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerExtractionTools(registrar mcpRegistrationTarget, deps Deps) error {
	if err := registerTool(registrar, domain.ExtractAccessCodeTool(), domain.ExtractAccessCodeHandler(deps.Audit)); err != nil {
		return err
	}
	return registerTool(registrar, domain.ExtractEnvelopeDataTool(), domain.ExtractEnvelopeDataHandler(deps.Audit))
}

func registerWorkflowTools(registrar mcpRegistrationTarget, deps Deps) error {
	return registerTool(registrar, domain.CompleteWorkflowTool(), domain.CompleteWorkflowHandler(deps.Controller, deps.Audit))
}

// registerDiscoveryTools registers server identity tools.
func registerDiscoveryTools(registrar mcpRegistrationTarget, deps Deps) error {
	return registerTool(registrar, domain.GetServerInfoTool(), domain.GetServerInfoHandler(deps.Info))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerEnvelopeResources registers readable envelope MCP resources.
func registerEnvelopeResources(registrar mcpRegistrationTarget, deps Deps) {
	registrar.AddResourceTemplate(domain.EnvelopeResourceTemplate(), domain.EnvelopeResourceHandler(deps.Controller))
}

// registerDiscoveryResources registers readable server identity MCP resources.
func registerDiscoveryResources(registrar mcpRegistrationTarget, deps Deps) {
	registrar.AddResource(domain.ServerInfoResource(), domain.ServerInfoResourceHandler(deps.Info))
}
