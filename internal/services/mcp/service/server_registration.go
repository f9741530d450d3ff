package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inkflow/signbridge/internal/services/mcp/domain"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpEnvelopeToolsModuleName     = "envelope-tools"
	mcpExtractionToolsModuleName   = "extraction-tools"
	mcpWorkflowToolsModuleName     = "workflow-tools"
	mcpDiscoveryToolsModuleName    = "discovery-tools"
	mcpEnvelopeResourceModuleName  = "envelope-resources"
	mcpDiscoveryResourceModuleName = "discovery-resources"
)

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResourceTemplate(resourceTemplate *mcp.ResourceTemplate, handler mcp.ResourceHandler) {
	r.server.AddResourceTemplate(resourceTemplate, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.GetEnvelopeInput, domain.EnvelopeResult](),
	newMCPToolRegistrar[domain.FillEnvelopeInput, domain.FillEnvelopeResult](),
	newMCPToolRegistrar[domain.SignEnvelopeInput, domain.SignEnvelopeResult](),
	newMCPToolRegistrar[domain.SubmitEnvelopeInput, domain.SubmitEnvelopeResult](),
	newMCPToolRegistrar[domain.SendForSignatureInput, domain.SendForSignatureResult](),
	newMCPToolRegistrar[domain.ExtractAccessCodeInput, domain.ExtractAccessCodeResult](),
	newMCPToolRegistrar[domain.ExtractEnvelopeDataInput, domain.ExtractEnvelopeDataResult](),
	newMCPToolRegistrar[domain.CompleteWorkflowInput, domain.CompleteWorkflowResult](),
	newMCPToolRegistrar[domain.GetServerInfoInput, domain.GetServerInfoResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(deps Deps) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpEnvelopeToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerEnvelopeTools(registrar, deps)
			},
		},
		{
			name: mcpExtractionToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerExtractionTools(registrar, deps)
			},
		},
		{
			name: mcpWorkflowToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerWorkflowTools(registrar, deps)
			},
		},
		{
			name: mcpDiscoveryToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerDiscoveryTools(registrar, deps)
			},
		},
		{
			name: mcpEnvelopeResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerEnvelopeResources(registrar, deps)
				return nil
			},
		},
		{
			name: mcpDiscoveryResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerDiscoveryResources(registrar, deps)
				return nil
			},
		},
	}
}
