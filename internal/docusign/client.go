package docusign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inkflow/signbridge/internal/esign"
	"github.com/inkflow/signbridge/internal/pdf"
	"github.com/inkflow/signbridge/internal/platform/errors"
)

// GetEnvelope returns the envelope snapshot including its signers.
func (c *Client) GetEnvelope(ctx context.Context, envelopeID string) (esign.Envelope, error) {
	var env envelopeResponse
	if err := c.do(ctx, http.MethodGet, c.envelopePath(envelopeID), nil, &env); err != nil {
		return esign.Envelope{}, err
	}

	var recipients recipientsResponse
	if err := c.do(ctx, http.MethodGet, c.envelopePath(envelopeID)+"/recipients", nil, &recipients); err != nil {
		return esign.Envelope{}, err
	}

	return envelopeFromResponse(env, recipients), nil
}

// FillFields writes values into the first signer's text and checkbox tabs,
// matching field names against tab labels case-insensitively.
func (c *Client) FillFields(ctx context.Context, envelopeID string, fields map[string]string) ([]string, error) {
	var recipients recipientsResponse
	if err := c.do(ctx, http.MethodGet, c.envelopePath(envelopeID)+"/recipients", nil, &recipients); err != nil {
		return nil, err
	}
	if len(recipients.Signers) == 0 {
		return nil, errors.New(errors.CodeNoFillableTarget, "envelope has no signers to fill for")
	}
	signer := recipients.Signers[0]

	tabsPath := c.envelopePath(envelopeID) + "/recipients/" + signer.RecipientID + "/tabs"
	var tabs tabsResponse
	if err := c.do(ctx, http.MethodGet, tabsPath, nil, &tabs); err != nil {
		return nil, err
	}

	update := tabsUpdate{}
	filled := []string{}
	for i := range tabs.TextTabs {
		tab := tabs.TextTabs[i]
		value, ok := lookupField(fields, tab.TabLabel)
		if !ok {
			continue
		}
		tab.Value = pdf.CoerceFieldValue(pdf.FieldText, value)
		update.TextTabs = append(update.TextTabs, tab)
		filled = append(filled, tab.TabLabel)
	}
	for i := range tabs.CheckboxTabs {
		tab := tabs.CheckboxTabs[i]
		value, ok := lookupField(fields, tab.TabLabel)
		if !ok {
			continue
		}
		tab.Selected = pdf.CoerceFieldValue(pdf.FieldCheckbox, value)
		update.CheckboxTabs = append(update.CheckboxTabs, tab)
		filled = append(filled, tab.TabLabel)
	}

	if len(filled) == 0 {
		return nil, errors.WithMetadata(errors.CodeNoFillableTarget,
			"no envelope tabs match the provided field names",
			map[string]string{"recipient": signer.Email})
	}

	if err := c.do(ctx, http.MethodPut, tabsPath, update, nil); err != nil {
		return nil, err
	}
	return filled, nil
}

// CreateRecipientView creates an embedded signing session. Client errors on
// this endpoint indicate the recipient or access code was rejected.
func (c *Client) CreateRecipientView(ctx context.Context, envelopeID string, req esign.RecipientViewRequest) (string, error) {
	body := recipientViewRequest{
		AuthenticationMethod: "email",
		Email:                req.Email,
		UserName:             req.Name,
		ReturnURL:            req.ReturnURL,
		AccessCode:           req.AccessCode,
	}
	if body.UserName == "" {
		body.UserName = req.Email
	}

	var view recipientViewResponse
	err := c.do(ctx, http.MethodPost, c.envelopePath(envelopeID)+"/views/recipient", body, &view)
	if err != nil {
		if apiErr, ok := err.(*errors.Error); ok && apiErr.Code == errors.CodeBackendError && isAuthStatus(apiErr) {
			return "", errors.WrapWithMetadata(errors.CodeSigningAuthFailed,
				"signing session rejected for "+req.Email, apiErr.Metadata, err)
		}
		return "", err
	}
	return view.URL, nil
}

// Submit marks the envelope completed and returns the fresh snapshot.
func (c *Client) Submit(ctx context.Context, envelopeID string) (esign.Envelope, error) {
	body := map[string]string{"status": string(esign.StatusCompleted)}
	if err := c.do(ctx, http.MethodPut, c.envelopePath(envelopeID), body, nil); err != nil {
		return esign.Envelope{}, err
	}
	return c.GetEnvelope(ctx, envelopeID)
}

// CreateEnvelope sends a document to a single signer with an anchored
// sign-here tab and returns the new envelope id.
func (c *Client) CreateEnvelope(ctx context.Context, req esign.EnvelopeRequest) (string, error) {
	subject := req.Subject
	if subject == "" {
		subject = "Please sign: " + req.Document.Name
	}

	definition := envelopeDefinition{
		EmailSubject: subject,
		EmailBlurb:   req.Message,
		Status:       "sent",
		Documents: []documentDefinition{{
			DocumentBase64: req.Document.Base64,
			Name:           req.Document.Name,
			FileExtension:  "pdf",
			DocumentID:     "1",
		}},
		Recipients: recipientsDefinition{
			Signers: []signerDefinition{{
				Email:        req.RecipientEmail,
				Name:         req.RecipientName,
				RecipientID:  "1",
				RoutingOrder: "1",
				Tabs: signerTabs{
					SignHereTabs: []anchorTab{{
						AnchorString:  "/sn1/",
						AnchorUnits:   "pixels",
						AnchorXOffset: "20",
						AnchorYOffset: "10",
					}},
				},
			}},
		},
	}

	var created envelopeResponse
	path := fmt.Sprintf("/restapi/v2.1/accounts/%s/envelopes", c.cfg.AccountID)
	if err := c.do(ctx, http.MethodPost, path, definition, &created); err != nil {
		return "", err
	}
	if created.EnvelopeID == "" {
		return "", errors.New(errors.CodeBackendError, "envelope creation response missing envelopeId")
	}
	return created.EnvelopeID, nil
}

func (c *Client) envelopePath(envelopeID string) string {
	return fmt.Sprintf("/restapi/v2.1/accounts/%s/envelopes/%s", c.cfg.AccountID, envelopeID)
}

// do runs one authenticated API call, decoding a JSON body into out when
// out is non-nil. Failures are translated into domain errors at this
// boundary so callers never see transport details.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.CodeBackendError, "encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return errors.Wrap(errors.CodeBackendError, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeBackendError, "docusign request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.CodeBackendError, "read docusign response", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.WithMetadata(errors.CodeEnvironmentMismatchSuspected,
			fmt.Sprintf("resource not found in the %s environment; envelopes created in one environment are invisible in the other (demo: %s, production: %s)",
				c.cfg.Environment(), DemoBaseURL, ProductionBaseURL),
			map[string]string{
				"configured_base_url": c.cfg.BaseURL,
				"demo_base_url":       DemoBaseURL,
				"production_base_url": ProductionBaseURL,
			})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.WithMetadata(errors.CodeBackendError,
			fmt.Sprintf("docusign returned %d for %s %s", resp.StatusCode, method, path),
			map[string]string{
				"status":   fmt.Sprintf("%d", resp.StatusCode),
				"response": truncate(string(payload), 512),
			})
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return errors.Wrap(errors.CodeBackendError, "decode docusign response", err)
		}
	}
	return nil
}

func lookupField(fields map[string]string, label string) (string, bool) {
	if value, ok := fields[label]; ok {
		return value, true
	}
	for name, value := range fields {
		if strings.EqualFold(name, label) {
			return value, true
		}
	}
	return "", false
}

func isAuthStatus(apiErr *errors.Error) bool {
	switch apiErr.Metadata["status"] {
	case "400", "401", "403":
		return true
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
