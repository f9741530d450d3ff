package docusign

import "github.com/inkflow/signbridge/internal/esign"

// Wire types for the eSignature REST API v2.1. Only the fields this client
// reads or writes are declared.

type envelopeResponse struct {
	EnvelopeID        string `json:"envelopeId"`
	Status            string `json:"status"`
	CreatedDateTime   string `json:"createdDateTime,omitempty"`
	SentDateTime      string `json:"sentDateTime,omitempty"`
	CompletedDateTime string `json:"completedDateTime,omitempty"`
}

type recipientsResponse struct {
	Signers []signerResponse `json:"signers"`
}

type signerResponse struct {
	RecipientID    string `json:"recipientId"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	SignedDateTime string `json:"signedDateTime,omitempty"`
}

type tabsResponse struct {
	TextTabs     []textTab     `json:"textTabs,omitempty"`
	CheckboxTabs []checkboxTab `json:"checkboxTabs,omitempty"`
}

type tabsUpdate struct {
	TextTabs     []textTab     `json:"textTabs,omitempty"`
	CheckboxTabs []checkboxTab `json:"checkboxTabs,omitempty"`
}

type textTab struct {
	TabID    string `json:"tabId,omitempty"`
	TabLabel string `json:"tabLabel"`
	Value    string `json:"value,omitempty"`
}

type checkboxTab struct {
	TabID    string `json:"tabId,omitempty"`
	TabLabel string `json:"tabLabel"`
	Selected string `json:"selected,omitempty"`
}

type recipientViewRequest struct {
	AuthenticationMethod string `json:"authenticationMethod"`
	Email                string `json:"email"`
	UserName             string `json:"userName"`
	ReturnURL            string `json:"returnUrl"`
	AccessCode           string `json:"accessCode,omitempty"`
}

type recipientViewResponse struct {
	URL string `json:"url"`
}

type envelopeDefinition struct {
	EmailSubject string               `json:"emailSubject"`
	EmailBlurb   string               `json:"emailBlurb,omitempty"`
	Status       string               `json:"status"`
	Documents    []documentDefinition `json:"documents"`
	Recipients   recipientsDefinition `json:"recipients"`
}

type documentDefinition struct {
	DocumentBase64 string `json:"documentBase64"`
	Name           string `json:"name"`
	FileExtension  string `json:"fileExtension"`
	DocumentID     string `json:"documentId"`
}

type recipientsDefinition struct {
	Signers []signerDefinition `json:"signers"`
}

type signerDefinition struct {
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	RecipientID  string     `json:"recipientId"`
	RoutingOrder string     `json:"routingOrder"`
	Tabs         signerTabs `json:"tabs"`
}

type signerTabs struct {
	SignHereTabs []anchorTab `json:"signHereTabs"`
}

type anchorTab struct {
	AnchorString  string `json:"anchorString"`
	AnchorUnits   string `json:"anchorUnits"`
	AnchorXOffset string `json:"anchorXOffset"`
	AnchorYOffset string `json:"anchorYOffset"`
}

func envelopeFromResponse(env envelopeResponse, recipients recipientsResponse) esign.Envelope {
	out := esign.Envelope{
		EnvelopeID:  env.EnvelopeID,
		Status:      esign.Status(env.Status),
		CreatedAt:   parseTime(env.CreatedDateTime),
		SentAt:      parseTime(env.SentDateTime),
		CompletedAt: parseTime(env.CompletedDateTime),
	}
	for _, signer := range recipients.Signers {
		out.Recipients = append(out.Recipients, esign.Recipient{
			Email:    signer.Email,
			Name:     signer.Name,
			Status:   signer.Status,
			SignedAt: parseTime(signer.SignedDateTime),
		})
	}
	return out
}
