// Package workflow drives envelope lifecycles against an injected
// signature backend: status lookups, field filling, signing sessions,
// final submission, and the combined email-to-signing workflow.
//
// The controller is synchronous and stateless across invocations. Every
// backend call runs under its own deadline and is attempted exactly once;
// callers that need retries decide that themselves.
package workflow

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/inkflow/signbridge/internal/esign"
	"github.com/inkflow/signbridge/internal/extract"
	"github.com/inkflow/signbridge/internal/platform/errors"
)

// backendTimeout bounds every outbound provider call.
const backendTimeout = 30 * time.Second

const defaultReturnURL = "https://www.docusign.com"

// linkPattern accepts both signing links and plain document links.
var linkPattern = regexp.MustCompile(`(?i)/(?:signing/)?documents/([0-9a-fA-F-]{4,})`)

// Controller orchestrates envelope operations over a signature backend.
// The backend arrives already authenticated; the controller never touches
// credentials.
type Controller struct {
	backend   esign.Backend
	returnURL string
	tracer    trace.Tracer
}

// New builds a controller. returnURL is where embedded signing sessions
// land after the ceremony; empty selects a provider-neutral default.
func New(backend esign.Backend, returnURL string) *Controller {
	if returnURL == "" {
		returnURL = defaultReturnURL
	}
	return &Controller{
		backend:   backend,
		returnURL: returnURL,
		tracer:    otel.Tracer("signbridge/workflow"),
	}
}

// Reference identifies an envelope by exactly one of three means. When
// several are set, EnvelopeID wins over Link, which wins over SecurityCode.
type Reference struct {
	EnvelopeID   string
	Link         string
	SecurityCode string
}

// Resolve reduces the reference to an envelope id without calling the
// backend.
func (r Reference) Resolve() (string, error) {
	switch {
	case r.EnvelopeID != "":
		return r.EnvelopeID, nil
	case r.Link != "":
		match := linkPattern.FindStringSubmatch(r.Link)
		if match == nil {
			return "", errors.WithMetadata(errors.CodeInvalidLinkFormat,
				"link does not contain a document identifier segment",
				map[string]string{"link": r.Link})
		}
		return match[1], nil
	case r.SecurityCode != "":
		return "", errors.New(errors.CodeUnsupportedOperation,
			"looking up an envelope by security code is not supported; provide the envelope id or the signing link")
	default:
		return "", errors.New(errors.CodeMissingReference,
			"provide an envelope_id, link, or security_code")
	}
}

// GetEnvelope resolves the reference and fetches the envelope snapshot.
func (c *Controller) GetEnvelope(ctx context.Context, ref Reference) (esign.Envelope, error) {
	ctx, span := c.tracer.Start(ctx, "workflow.GetEnvelope")
	defer span.End()

	envelopeID, err := ref.Resolve()
	if err != nil {
		return esign.Envelope{}, err
	}
	span.SetAttributes(attribute.String("envelope.id", envelopeID))

	return c.getEnvelope(ctx, envelopeID)
}

// FillEnvelope writes field values into a sent envelope. The status gate
// runs before any fill call reaches the backend.
func (c *Controller) FillEnvelope(ctx context.Context, envelopeID string, fields map[string]string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "workflow.FillEnvelope",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)))
	defer span.End()

	if len(fields) == 0 {
		return nil, errors.New(errors.CodeNoFillableTarget, "no field values provided")
	}

	env, err := c.getEnvelope(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	if !env.Status.CanFill() {
		return nil, invalidTransition("fill", string(esign.StatusSent), env.Status)
	}

	callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()
	return c.backend.FillFields(callCtx, envelopeID, fields)
}

// SignOutcome reports the envelope state after a sign request, with a
// signing session URL when one was created.
type SignOutcome struct {
	Envelope   esign.Envelope
	SigningURL string
}

// SignEnvelope creates an embedded signing session when a security code is
// supplied; without one it reports envelope status only. recipientEmail
// falls back to the envelope's first recipient.
func (c *Controller) SignEnvelope(ctx context.Context, envelopeID, recipientEmail, securityCode, returnURL string) (SignOutcome, error) {
	ctx, span := c.tracer.Start(ctx, "workflow.SignEnvelope",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)))
	defer span.End()

	env, err := c.getEnvelope(ctx, envelopeID)
	if err != nil {
		return SignOutcome{}, err
	}
	if !env.Status.CanSign() {
		return SignOutcome{}, invalidTransition("sign",
			fmt.Sprintf("%s or %s", esign.StatusSent, esign.StatusDelivered), env.Status)
	}

	if securityCode == "" {
		return SignOutcome{Envelope: env}, nil
	}

	recipient, err := pickRecipient(env, recipientEmail)
	if err != nil {
		return SignOutcome{}, err
	}
	if returnURL == "" {
		returnURL = c.returnURL
	}

	callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()
	url, err := c.backend.CreateRecipientView(callCtx, envelopeID, esign.RecipientViewRequest{
		Email:      recipient.Email,
		Name:       recipient.Name,
		AccessCode: securityCode,
		ReturnURL:  returnURL,
	})
	if err != nil {
		return SignOutcome{}, err
	}
	return SignOutcome{Envelope: env, SigningURL: url}, nil
}

// SubmitEnvelope finalizes a signed envelope. Submitting an already
// completed envelope is a no-op that reports the current state.
func (c *Controller) SubmitEnvelope(ctx context.Context, envelopeID string) (esign.Envelope, error) {
	ctx, span := c.tracer.Start(ctx, "workflow.SubmitEnvelope",
		trace.WithAttributes(attribute.String("envelope.id", envelopeID)))
	defer span.End()

	env, err := c.getEnvelope(ctx, envelopeID)
	if err != nil {
		return esign.Envelope{}, err
	}
	if env.Status == esign.StatusCompleted {
		return env, nil
	}
	if !env.Status.CanSubmit() {
		return esign.Envelope{}, invalidTransition("submit",
			fmt.Sprintf("%s or %s", esign.StatusCompleted, esign.StatusSigned), env.Status)
	}

	callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()
	return c.backend.Submit(callCtx, envelopeID)
}

// SendRequest describes a document to route for signature.
type SendRequest struct {
	Document       esign.Document
	RecipientEmail string
	RecipientName  string
	Subject        string
	Message        string
}

// SendForSignature creates and sends a new envelope.
func (c *Controller) SendForSignature(ctx context.Context, req SendRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "workflow.SendForSignature")
	defer span.End()

	if req.Document.Base64 == "" {
		return "", errors.New(errors.CodeInvalidDocument, "no document content provided")
	}
	if req.RecipientEmail == "" {
		return "", errors.New(errors.CodeMissingReference, "recipient_email is required")
	}

	callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()
	return c.backend.CreateEnvelope(callCtx, esign.EnvelopeRequest{
		Document:       req.Document,
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		Subject:        req.Subject,
		Message:        req.Message,
	})
}

// WorkflowRequest drives CompleteWorkflow. RecipientEmail, when set, is
// authoritative over anything derived from the email content.
type WorkflowRequest struct {
	EmailContent   string
	RecipientEmail string
	Fields         map[string]string
	ReturnURL      string
}

// CompleteWorkflow runs extraction, signing session creation, field
// filling, and the signing step as one pass. Extraction must recover both
// an envelope identifier and an access code before any backend call is
// made. A recipient view failure aborts the run but keeps the extraction
// output; fill and sign failures are recorded and the run continues.
func (c *Controller) CompleteWorkflow(ctx context.Context, req WorkflowRequest) Result {
	ctx, span := c.tracer.Start(ctx, "workflow.CompleteWorkflow")
	defer span.End()

	var result Result

	candidates := extract.Extract(req.EmailContent)
	extraction := stepOK(StepExtraction)
	extraction.EnvelopeIDs = candidates.EnvelopeIDs
	extraction.AccessCodes = candidates.AccessCodes
	if len(candidates.EnvelopeIDs) == 0 || len(candidates.AccessCodes) == 0 {
		failed := stepFailed(StepExtraction,
			errors.New(errors.CodeExtractionEmpty,
				"email content must yield both an envelope identifier and an access code"))
		failed.EnvelopeIDs = candidates.EnvelopeIDs
		failed.AccessCodes = candidates.AccessCodes
		result.Steps = append(result.Steps, failed)
		return result
	}
	result.Steps = append(result.Steps, extraction)

	result.Final.EnvelopeID = candidates.EnvelopeIDs[0]
	result.Final.AccessCode = candidates.AccessCodes[0]
	span.SetAttributes(attribute.String("envelope.id", result.Final.EnvelopeID))

	recipient, err := c.workflowRecipient(ctx, result.Final.EnvelopeID, req.RecipientEmail)
	if err != nil {
		result.Steps = append(result.Steps, stepFailed(StepRecipientView, err))
		return result
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = c.returnURL
	}
	viewCtx, cancelView := context.WithTimeout(ctx, backendTimeout)
	url, err := c.backend.CreateRecipientView(viewCtx, result.Final.EnvelopeID, esign.RecipientViewRequest{
		Email:      recipient.Email,
		Name:       recipient.Name,
		AccessCode: result.Final.AccessCode,
		ReturnURL:  returnURL,
	})
	cancelView()
	if err != nil {
		result.Steps = append(result.Steps, stepFailed(StepRecipientView, err))
		return result
	}
	view := stepOK(StepRecipientView)
	view.SigningURL = url
	result.Steps = append(result.Steps, view)
	result.Final.SigningURL = url
	result.Success = true

	if len(req.Fields) > 0 {
		fillCtx, cancelFill := context.WithTimeout(ctx, backendTimeout)
		filled, err := c.backend.FillFields(fillCtx, result.Final.EnvelopeID, req.Fields)
		cancelFill()
		if err != nil {
			result.Steps = append(result.Steps, stepFailed(StepFill, err))
		} else {
			fill := stepOK(StepFill)
			fill.FilledFields = filled
			result.Steps = append(result.Steps, fill)
		}
	}

	// The sign stage runs the full signing flow with the extracted code;
	// SigningCompleted reflects that stage's outcome.
	outcome, err := c.SignEnvelope(ctx, result.Final.EnvelopeID, recipient.Email,
		result.Final.AccessCode, returnURL)
	if err != nil {
		result.Steps = append(result.Steps, stepFailed(StepSign, err))
		return result
	}
	sign := stepOK(StepSign)
	sign.SigningURL = outcome.SigningURL
	result.Steps = append(result.Steps, sign)
	result.Final.SigningCompleted = true

	return result
}

// workflowRecipient fetches the envelope and selects the signing recipient,
// honoring an explicit email over envelope data.
func (c *Controller) workflowRecipient(ctx context.Context, envelopeID, explicitEmail string) (esign.Recipient, error) {
	env, err := c.getEnvelope(ctx, envelopeID)
	if err != nil {
		return esign.Recipient{}, err
	}
	return pickRecipient(env, explicitEmail)
}

func (c *Controller) getEnvelope(ctx context.Context, envelopeID string) (esign.Envelope, error) {
	callCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()
	return c.backend.GetEnvelope(callCtx, envelopeID)
}

func pickRecipient(env esign.Envelope, explicitEmail string) (esign.Recipient, error) {
	if explicitEmail != "" {
		for _, r := range env.Recipients {
			if r.Email == explicitEmail {
				return r, nil
			}
		}
		return esign.Recipient{Email: explicitEmail}, nil
	}
	if len(env.Recipients) == 0 {
		return esign.Recipient{}, errors.New(errors.CodeNoFillableTarget,
			"envelope has no recipients; provide recipient_email")
	}
	return env.Recipients[0], nil
}

func invalidTransition(op, expected string, actual esign.Status) error {
	return errors.WithMetadata(errors.CodeInvalidStateTransition,
		fmt.Sprintf("cannot %s envelope in status %q; requires %s", op, actual, expected),
		map[string]string{
			"operation": op,
			"expected":  expected,
			"actual":    string(actual),
		})
}
