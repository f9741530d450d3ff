package docusign

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inkflow/signbridge/internal/esign"
	"github.com/inkflow/signbridge/internal/platform/errors"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return string(pem.EncodeToMemory(block))
}

// newTestClient wires a client against a fake DocuSign server. The handler
// receives every request except the token exchange, which is served here.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server, *int) {
	t.Helper()

	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if r.FormValue("grant_type") != jwtGrantType {
			t.Errorf("unexpected grant_type %q", r.FormValue("grant_type"))
		}
		if r.FormValue("assertion") == "" {
			t.Error("expected a jwt assertion")
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		handler(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		AccountID:      "acct-1",
		IntegrationKey: "ik-1",
		UserID:         "user-1",
		PrivateKey:     testPrivateKeyPEM(t),
		BaseURL:        srv.URL,
		AuthServer:     srv.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv, &tokenCalls
}

func TestConfigValidate(t *testing.T) {
	err := Config{AccountID: "acct"}.Validate()
	if errors.CodeOf(err) != errors.CodeConfigIncomplete {
		t.Fatalf("expected CONFIG_INCOMPLETE, got %v", err)
	}

	full := Config{AccountID: "a", IntegrationKey: "b", UserID: "c", PrivateKey: "d"}
	if err := full.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestGetEnvelope(t *testing.T) {
	client, _, tokenCalls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/envelopes/env-1"):
			json.NewEncoder(w).Encode(envelopeResponse{
				EnvelopeID:      "env-1",
				Status:          "sent",
				SentDateTime:    "2026-03-01T10:00:00.0000000Z",
				CreatedDateTime: "2026-03-01T09:00:00Z",
			})
		case strings.HasSuffix(r.URL.Path, "/recipients"):
			json.NewEncoder(w).Encode(recipientsResponse{Signers: []signerResponse{
				{RecipientID: "1", Email: "signer@example.com", Name: "Signer", Status: "sent"},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	env, err := client.GetEnvelope(context.Background(), "env-1")
	if err != nil {
		t.Fatalf("get envelope: %v", err)
	}
	if env.EnvelopeID != "env-1" || env.Status != esign.StatusSent {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if len(env.Recipients) != 1 || env.Recipients[0].Email != "signer@example.com" {
		t.Fatalf("unexpected recipients %+v", env.Recipients)
	}
	if env.SentAt.IsZero() || env.CreatedAt.IsZero() {
		t.Fatal("expected timestamps to parse")
	}
	if *tokenCalls != 1 {
		t.Fatalf("expected one token exchange for both API calls, got %d", *tokenCalls)
	}
}

func TestGetEnvelopeNotFoundSuggestsEnvironmentMismatch(t *testing.T) {
	client, srv, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorCode":"ENVELOPE_DOES_NOT_EXIST"}`, http.StatusNotFound)
	})

	_, err := client.GetEnvelope(context.Background(), "missing")
	if errors.CodeOf(err) != errors.CodeEnvironmentMismatchSuspected {
		t.Fatalf("expected ENVIRONMENT_MISMATCH_SUSPECTED, got %v", err)
	}

	var domainErr *errors.Error
	if !stderrors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %T", err)
	}
	if domainErr.Metadata["demo_base_url"] != DemoBaseURL ||
		domainErr.Metadata["production_base_url"] != ProductionBaseURL {
		t.Fatalf("expected both environment urls in metadata, got %v", domainErr.Metadata)
	}
	if domainErr.Metadata["configured_base_url"] != srv.URL {
		t.Fatalf("expected configured base url, got %v", domainErr.Metadata)
	}
}

func TestCreateRecipientViewAuthFailure(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorCode":"INVALID_ACCESS_CODE"}`, http.StatusUnauthorized)
	})

	_, err := client.CreateRecipientView(context.Background(), "env-1", esign.RecipientViewRequest{
		Email:      "signer@example.com",
		AccessCode: "WRONG1",
	})
	if errors.CodeOf(err) != errors.CodeSigningAuthFailed {
		t.Fatalf("expected SIGNING_AUTH_FAILED, got %v", err)
	}
}

func TestCreateRecipientView(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/views/recipient") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body recipientViewRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode view request: %v", err)
		}
		if body.AuthenticationMethod != "email" || body.AccessCode != "ZX9Q7A" {
			t.Errorf("unexpected view request %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(recipientViewResponse{URL: "https://sign.example.com/session/1"})
	})

	url, err := client.CreateRecipientView(context.Background(), "env-1", esign.RecipientViewRequest{
		Email:      "signer@example.com",
		AccessCode: "ZX9Q7A",
		ReturnURL:  "https://app.example.com/done",
	})
	if err != nil {
		t.Fatalf("create view: %v", err)
	}
	if url != "https://sign.example.com/session/1" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestFillFieldsNoSigners(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recipientsResponse{})
	})

	_, err := client.FillFields(context.Background(), "env-1", map[string]string{"name": "Ada"})
	if errors.CodeOf(err) != errors.CodeNoFillableTarget {
		t.Fatalf("expected NO_FILLABLE_TARGET, got %v", err)
	}
}

func TestFillFieldsMatchesTabsCaseInsensitively(t *testing.T) {
	var updated tabsUpdate
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/recipients"):
			json.NewEncoder(w).Encode(recipientsResponse{Signers: []signerResponse{
				{RecipientID: "7", Email: "signer@example.com"},
			}})
		case strings.HasSuffix(r.URL.Path, "/tabs") && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(tabsResponse{
				TextTabs:     []textTab{{TabID: "t1", TabLabel: "Full Name"}},
				CheckboxTabs: []checkboxTab{{TabID: "c1", TabLabel: "Agree"}},
			})
		case strings.HasSuffix(r.URL.Path, "/tabs") && r.Method == http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
				t.Fatalf("decode tabs update: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	filled, err := client.FillFields(context.Background(), "env-1", map[string]string{
		"full name": "Ada Lovelace",
		"agree":     "yes",
		"missing":   "ignored",
	})
	if err != nil {
		t.Fatalf("fill fields: %v", err)
	}
	if len(filled) != 2 {
		t.Fatalf("expected two filled fields, got %v", filled)
	}
	if len(updated.TextTabs) != 1 || updated.TextTabs[0].Value != "Ada Lovelace" {
		t.Fatalf("unexpected text tab update %+v", updated.TextTabs)
	}
	if len(updated.CheckboxTabs) != 1 || updated.CheckboxTabs[0].Selected != "true" {
		t.Fatalf("unexpected checkbox update %+v", updated.CheckboxTabs)
	}
}

func TestSubmitMarksEnvelopeCompleted(t *testing.T) {
	var sawPut bool
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			sawPut = true
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["status"] != "completed" {
				t.Errorf("expected status completed, got %v", body)
			}
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "/recipients"):
			json.NewEncoder(w).Encode(recipientsResponse{})
		default:
			json.NewEncoder(w).Encode(envelopeResponse{EnvelopeID: "env-1", Status: "completed"})
		}
	})

	env, err := client.Submit(context.Background(), "env-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !sawPut {
		t.Fatal("expected a status update call")
	}
	if env.Status != esign.StatusCompleted {
		t.Fatalf("unexpected status %s", env.Status)
	}
}

func TestCreateEnvelope(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var definition envelopeDefinition
		if err := json.NewDecoder(r.Body).Decode(&definition); err != nil {
			t.Fatalf("decode definition: %v", err)
		}
		if definition.Status != "sent" || len(definition.Documents) != 1 {
			t.Errorf("unexpected definition %+v", definition)
		}
		if len(definition.Recipients.Signers) != 1 || definition.Recipients.Signers[0].Email != "signer@example.com" {
			t.Errorf("unexpected signers %+v", definition.Recipients.Signers)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(envelopeResponse{EnvelopeID: "env-new"})
	})

	id, err := client.CreateEnvelope(context.Background(), esign.EnvelopeRequest{
		Document:       esign.Document{Name: "contract.pdf", Base64: "JVBERi0="},
		RecipientEmail: "signer@example.com",
		RecipientName:  "Signer",
	})
	if err != nil {
		t.Fatalf("create envelope: %v", err)
	}
	if id != "env-new" {
		t.Fatalf("unexpected envelope id %q", id)
	}
}
