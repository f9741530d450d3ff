package workflow

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/inkflow/signbridge/internal/esign"
	"github.com/inkflow/signbridge/internal/platform/errors"
)

type fakeBackend struct {
	envelope esign.Envelope
	getErr   error
	getCalls int

	filled    []string
	fillErr   error
	fillCalls int

	viewURL   string
	viewErr   error
	viewCalls int
	viewReq   esign.RecipientViewRequest

	submitEnvelope esign.Envelope
	submitErr      error
	submitCalls    int

	createdID   string
	createErr   error
	createCalls int
}

func (f *fakeBackend) GetEnvelope(ctx context.Context, envelopeID string) (esign.Envelope, error) {
	f.getCalls++
	return f.envelope, f.getErr
}

func (f *fakeBackend) FillFields(ctx context.Context, envelopeID string, fields map[string]string) ([]string, error) {
	f.fillCalls++
	return f.filled, f.fillErr
}

func (f *fakeBackend) CreateRecipientView(ctx context.Context, envelopeID string, req esign.RecipientViewRequest) (string, error) {
	f.viewCalls++
	f.viewReq = req
	return f.viewURL, f.viewErr
}

func (f *fakeBackend) Submit(ctx context.Context, envelopeID string) (esign.Envelope, error) {
	f.submitCalls++
	return f.submitEnvelope, f.submitErr
}

func (f *fakeBackend) CreateEnvelope(ctx context.Context, req esign.EnvelopeRequest) (string, error) {
	f.createCalls++
	return f.createdID, f.createErr
}

func sentEnvelope() esign.Envelope {
	return esign.Envelope{
		EnvelopeID: "env-1",
		Status:     esign.StatusSent,
		Recipients: []esign.Recipient{{Email: "signer@example.com", Name: "Signer"}},
	}
}

func TestReferenceResolve(t *testing.T) {
	t.Run("envelope id wins", func(t *testing.T) {
		ref := Reference{EnvelopeID: "env-1", Link: "https://x/documents/other"}
		id, err := ref.Resolve()
		if err != nil || id != "env-1" {
			t.Fatalf("expected env-1, got %q err %v", id, err)
		}
	})

	t.Run("signing link", func(t *testing.T) {
		id, err := Reference{Link: "https://demo.docusign.net/signing/documents/abcd1234"}.Resolve()
		if err != nil || id != "abcd1234" {
			t.Fatalf("expected abcd1234, got %q err %v", id, err)
		}
	})

	t.Run("plain document link", func(t *testing.T) {
		id, err := Reference{Link: "https://demo.docusign.net/documents/abcd1234?view=1"}.Resolve()
		if err != nil || id != "abcd1234" {
			t.Fatalf("expected abcd1234, got %q err %v", id, err)
		}
	})

	t.Run("invalid link", func(t *testing.T) {
		_, err := Reference{Link: "https://example.com/help"}.Resolve()
		if errors.CodeOf(err) != errors.CodeInvalidLinkFormat {
			t.Fatalf("expected INVALID_LINK_FORMAT, got %v", err)
		}
	})

	t.Run("security code lookup unsupported", func(t *testing.T) {
		_, err := Reference{SecurityCode: "ZX9Q7A"}.Resolve()
		if errors.CodeOf(err) != errors.CodeUnsupportedOperation {
			t.Fatalf("expected UNSUPPORTED_OPERATION, got %v", err)
		}
	})

	t.Run("no reference", func(t *testing.T) {
		_, err := Reference{}.Resolve()
		if errors.CodeOf(err) != errors.CodeMissingReference {
			t.Fatalf("expected MISSING_REFERENCE, got %v", err)
		}
	})
}

func TestGetEnvelope(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope()}
	controller := New(backend, "")

	env, err := controller.GetEnvelope(context.Background(), Reference{EnvelopeID: "env-1"})
	if err != nil {
		t.Fatalf("get envelope: %v", err)
	}
	if env.EnvelopeID != "env-1" || backend.getCalls != 1 {
		t.Fatalf("unexpected envelope %+v calls %d", env, backend.getCalls)
	}
}

func TestFillEnvelopeStatusGate(t *testing.T) {
	backend := &fakeBackend{envelope: esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusCompleted}}
	controller := New(backend, "")

	_, err := controller.FillEnvelope(context.Background(), "env-1", map[string]string{"name": "Ada"})

	if errors.CodeOf(err) != errors.CodeInvalidStateTransition {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
	if backend.fillCalls != 0 {
		t.Fatalf("fill must not reach the backend, got %d calls", backend.fillCalls)
	}

	var domainErr *errors.Error
	if !stderrors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %T", err)
	}
	if domainErr.Metadata["expected"] != "sent" || domainErr.Metadata["actual"] != "completed" {
		t.Fatalf("expected status metadata, got %v", domainErr.Metadata)
	}
}

func TestFillEnvelopeSent(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope(), filled: []string{"name"}}
	controller := New(backend, "")

	filled, err := controller.FillEnvelope(context.Background(), "env-1", map[string]string{"name": "Ada"})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(filled) != 1 || backend.fillCalls != 1 {
		t.Fatalf("unexpected fill result %v calls %d", filled, backend.fillCalls)
	}
}

func TestFillEnvelopeNoFields(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope()}
	controller := New(backend, "")

	_, err := controller.FillEnvelope(context.Background(), "env-1", nil)
	if errors.CodeOf(err) != errors.CodeNoFillableTarget {
		t.Fatalf("expected NO_FILLABLE_TARGET, got %v", err)
	}
	if backend.getCalls != 0 {
		t.Fatal("empty fill should not hit the backend")
	}
}

func TestSignEnvelopeWithCode(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope(), viewURL: "https://sign.example.com/s/1"}
	controller := New(backend, "https://app.example.com/done")

	outcome, err := controller.SignEnvelope(context.Background(), "env-1", "", "ZX9Q7A", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if outcome.SigningURL != "https://sign.example.com/s/1" {
		t.Fatalf("expected signing url, got %q", outcome.SigningURL)
	}
	if backend.viewReq.AccessCode != "ZX9Q7A" || backend.viewReq.Email != "signer@example.com" {
		t.Fatalf("unexpected view request %+v", backend.viewReq)
	}
	if backend.viewReq.ReturnURL != "https://app.example.com/done" {
		t.Fatalf("expected configured return url, got %q", backend.viewReq.ReturnURL)
	}
}

func TestSignEnvelopeWithoutCodeReportsStatus(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope()}
	controller := New(backend, "")

	outcome, err := controller.SignEnvelope(context.Background(), "env-1", "", "", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if outcome.SigningURL != "" {
		t.Fatalf("expected no signing url, got %q", outcome.SigningURL)
	}
	if backend.viewCalls != 0 {
		t.Fatalf("status-only sign must not create a view, got %d calls", backend.viewCalls)
	}
}

func TestSignEnvelopeStatusGate(t *testing.T) {
	backend := &fakeBackend{envelope: esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusVoided}}
	controller := New(backend, "")

	_, err := controller.SignEnvelope(context.Background(), "env-1", "", "ZX9Q7A", "")
	if errors.CodeOf(err) != errors.CodeInvalidStateTransition {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
	if backend.viewCalls != 0 {
		t.Fatal("view must not be created for a voided envelope")
	}
}

func TestSubmitEnvelopeIdempotent(t *testing.T) {
	backend := &fakeBackend{envelope: esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusCompleted}}
	controller := New(backend, "")

	for i := 0; i < 2; i++ {
		env, err := controller.SubmitEnvelope(context.Background(), "env-1")
		if err != nil {
			t.Fatalf("submit %d: %v", i+1, err)
		}
		if env.Status != esign.StatusCompleted {
			t.Fatalf("submit %d: unexpected status %s", i+1, env.Status)
		}
		if backend.submitCalls != 0 {
			t.Fatalf("completed envelope must not be submitted again, got %d calls", backend.submitCalls)
		}
	}
}

func TestSubmitEnvelopeSigned(t *testing.T) {
	backend := &fakeBackend{
		envelope:       esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusSigned},
		submitEnvelope: esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusCompleted},
	}
	controller := New(backend, "")

	env, err := controller.SubmitEnvelope(context.Background(), "env-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if env.Status != esign.StatusCompleted || backend.submitCalls != 1 {
		t.Fatalf("expected one submit call, got %+v calls %d", env, backend.submitCalls)
	}
}

func TestSubmitEnvelopeStatusGate(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope()}
	controller := New(backend, "")

	_, err := controller.SubmitEnvelope(context.Background(), "env-1")
	if errors.CodeOf(err) != errors.CodeInvalidStateTransition {
		t.Fatalf("expected INVALID_STATE_TRANSITION, got %v", err)
	}
	if backend.submitCalls != 0 {
		t.Fatal("gate must run before the backend submit")
	}
}

const workflowEmail = "Your envelope: 9f8e7d6c-5b4a-4210-8edc-ba9876543210 Your access code is: ZX9Q7A"

func TestCompleteWorkflow(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope(), viewURL: "https://sign.example.com/s/1", filled: []string{"name"}}
	controller := New(backend, "")

	result := controller.CompleteWorkflow(context.Background(), WorkflowRequest{
		EmailContent: workflowEmail,
		Fields:       map[string]string{"name": "Ada"},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Final.EnvelopeID != "9f8e7d6c-5b4a-4210-8edc-ba9876543210" {
		t.Fatalf("unexpected envelope id %q", result.Final.EnvelopeID)
	}
	if result.Final.AccessCode != "ZX9Q7A" || result.Final.SigningURL == "" {
		t.Fatalf("unexpected final state %+v", result.Final)
	}
	for _, step := range []Step{StepExtraction, StepRecipientView, StepFill, StepSign} {
		recorded, ok := result.StepFor(step)
		if !ok || !recorded.Success {
			t.Fatalf("expected %s step to succeed, got %+v", step, recorded)
		}
	}
	if !result.Final.SigningCompleted {
		t.Fatal("a successful sign step must report signing as completed")
	}
}

func TestCompleteWorkflowMissingAccessCode(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope(), viewURL: "https://sign.example.com/s/1"}
	controller := New(backend, "")

	result := controller.CompleteWorkflow(context.Background(), WorkflowRequest{
		EmailContent: "Your envelope: 9f8e7d6c-5b4a-4210-8edc-ba9876543210 awaits your signature.",
	})

	if result.Success {
		t.Fatal("expected failure without an access code")
	}
	step, ok := result.StepFor(StepExtraction)
	if !ok || step.Code != errors.CodeExtractionEmpty {
		t.Fatalf("expected EXTRACTION_EMPTY step, got %+v", step)
	}
	if len(step.EnvelopeIDs) != 1 || len(step.AccessCodes) != 0 {
		t.Fatalf("extraction candidates must be preserved, got %+v", step)
	}
	if backend.getCalls != 0 || backend.viewCalls != 0 {
		t.Fatal("no backend calls expected without an access code")
	}
	if result.Final.EnvelopeID != "" || result.Final.AccessCode != "" {
		t.Fatalf("final state must stay empty, got %+v", result.Final)
	}
}

func TestCompleteWorkflowExtractionEmpty(t *testing.T) {
	backend := &fakeBackend{}
	controller := New(backend, "")

	result := controller.CompleteWorkflow(context.Background(), WorkflowRequest{EmailContent: "nothing here"})

	if result.Success {
		t.Fatal("expected failure")
	}
	step, ok := result.StepFor(StepExtraction)
	if !ok || step.Code != errors.CodeExtractionEmpty {
		t.Fatalf("expected EXTRACTION_EMPTY step, got %+v", step)
	}
	if backend.getCalls != 0 || backend.viewCalls != 0 {
		t.Fatal("no backend calls expected without an envelope id")
	}
	if _, ok := result.StepFor(StepRecipientView); ok {
		t.Fatal("unreached steps must be absent")
	}
}

func TestCompleteWorkflowViewFailurePreservesExtraction(t *testing.T) {
	backend := &fakeBackend{
		envelope: sentEnvelope(),
		viewErr:  errors.New(errors.CodeSigningAuthFailed, "access code rejected"),
	}
	controller := New(backend, "")

	result := controller.CompleteWorkflow(context.Background(), WorkflowRequest{EmailContent: workflowEmail})

	if result.Success {
		t.Fatal("expected failure when the signing session cannot be created")
	}
	extraction, ok := result.StepFor(StepExtraction)
	if !ok || !extraction.Success {
		t.Fatalf("extraction output must be preserved, got %+v", extraction)
	}
	if len(extraction.EnvelopeIDs) != 1 || len(extraction.AccessCodes) == 0 {
		t.Fatalf("expected extraction candidates, got %+v", extraction)
	}
	view, ok := result.StepFor(StepRecipientView)
	if !ok || view.Code != errors.CodeSigningAuthFailed {
		t.Fatalf("expected failed view step, got %+v", view)
	}
	if _, ok := result.StepFor(StepFill); ok {
		t.Fatal("fill must not run after a view failure")
	}
	if _, ok := result.StepFor(StepSign); ok {
		t.Fatal("sign must not run after a view failure")
	}
}

func TestCompleteWorkflowFillFailureContinues(t *testing.T) {
	backend := &fakeBackend{
		envelope: sentEnvelope(),
		viewURL:  "https://sign.example.com/s/1",
		fillErr:  errors.New(errors.CodeNoFillableTarget, "no matching tabs"),
	}
	controller := New(backend, "")

	result := controller.CompleteWorkflow(context.Background(), WorkflowRequest{
		EmailContent: workflowEmail,
		Fields:       map[string]string{"name": "Ada"},
	})

	if !result.Success {
		t.Fatalf("fill failure must not fail the run, got %+v", result)
	}
	fill, ok := result.StepFor(StepFill)
	if !ok || fill.Success || fill.Code != errors.CodeNoFillableTarget {
		t.Fatalf("expected failed fill step, got %+v", fill)
	}
	if _, ok := result.StepFor(StepSign); !ok {
		t.Fatal("sign step must still run after a fill failure")
	}
}

func TestCompleteWorkflowExplicitRecipientWins(t *testing.T) {
	backend := &fakeBackend{envelope: sentEnvelope(), viewURL: "https://sign.example.com/s/1"}
	controller := New(backend, "")

	result := controller.CompleteWorkflow(context.Background(), WorkflowRequest{
		EmailContent:   workflowEmail,
		RecipientEmail: "override@example.com",
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if backend.viewReq.Email != "override@example.com" {
		t.Fatalf("explicit recipient must win, got %q", backend.viewReq.Email)
	}
}

func TestSendForSignature(t *testing.T) {
	backend := &fakeBackend{createdID: "env-new"}
	controller := New(backend, "")

	id, err := controller.SendForSignature(context.Background(), SendRequest{
		Document:       esign.Document{Name: "contract.pdf", Base64: "JVBERi0="},
		RecipientEmail: "signer@example.com",
		RecipientName:  "Signer",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "env-new" || backend.createCalls != 1 {
		t.Fatalf("unexpected result %q calls %d", id, backend.createCalls)
	}

	t.Run("missing document", func(t *testing.T) {
		_, err := controller.SendForSignature(context.Background(), SendRequest{RecipientEmail: "a@b.c"})
		if errors.CodeOf(err) != errors.CodeInvalidDocument {
			t.Fatalf("expected INVALID_DOCUMENT, got %v", err)
		}
	})

	t.Run("missing recipient", func(t *testing.T) {
		_, err := controller.SendForSignature(context.Background(), SendRequest{
			Document: esign.Document{Base64: "JVBERi0="},
		})
		if errors.CodeOf(err) != errors.CodeMissingReference {
			t.Fatalf("expected MISSING_REFERENCE, got %v", err)
		}
	})
}
