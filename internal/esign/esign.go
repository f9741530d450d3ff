// Package esign defines the envelope domain model and the capability
// interface a signature provider must implement. The workflow controller
// depends only on this package, never on a concrete provider.
package esign

import (
	"context"
	"time"
)

// Status is an envelope lifecycle status as reported by the provider.
// Values are opaque strings gated by value, not by ordering.
type Status string

const (
	StatusCreated   Status = "created"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
	StatusVoided    Status = "voided"
	StatusSigned    Status = "signed"
	StatusError     Status = "error"
)

// CanFill reports whether the envelope status allows updating field values.
func (s Status) CanFill() bool {
	return s == StatusSent
}

// CanSign reports whether a signing session can be created.
func (s Status) CanSign() bool {
	return s == StatusSent || s == StatusDelivered
}

// CanSubmit reports whether the envelope is ready for final submission.
func (s Status) CanSubmit() bool {
	return s == StatusCompleted || s == StatusSigned
}

// Recipient is a signer attached to an envelope.
type Recipient struct {
	Email    string
	Name     string
	Status   string
	SignedAt time.Time // zero when unsigned
}

// Envelope is a point-in-time snapshot of a provider envelope. Timestamps
// are zero when the provider has not populated them.
type Envelope struct {
	EnvelopeID  string
	Status      Status
	Recipients  []Recipient
	CreatedAt   time.Time
	SentAt      time.Time
	CompletedAt time.Time
}

// RecipientViewRequest describes an embedded signing session for one
// recipient.
type RecipientViewRequest struct {
	Email      string
	Name       string
	AccessCode string
	ReturnURL  string
}

// Document is a file to be routed for signature.
type Document struct {
	Name   string
	Base64 string
}

// EnvelopeRequest describes a new envelope with a single signer.
type EnvelopeRequest struct {
	Document       Document
	RecipientEmail string
	RecipientName  string
	Subject        string
	Message        string
}

// Backend is the capability surface the workflow controller depends on.
// Implementations carry their own authentication lifecycle; callers never
// see credentials or token refresh.
type Backend interface {
	// GetEnvelope returns the envelope snapshot including recipients.
	GetEnvelope(ctx context.Context, envelopeID string) (Envelope, error)

	// FillFields writes field values into the envelope's fillable tabs and
	// returns the names of the fields actually filled.
	FillFields(ctx context.Context, envelopeID string, fields map[string]string) ([]string, error)

	// CreateRecipientView creates an embedded signing session and returns
	// its URL.
	CreateRecipientView(ctx context.Context, envelopeID string, req RecipientViewRequest) (string, error)

	// Submit finalizes a signed envelope and returns the resulting snapshot.
	Submit(ctx context.Context, envelopeID string) (Envelope, error)

	// CreateEnvelope sends a document for signature and returns the new
	// envelope's identifier.
	CreateEnvelope(ctx context.Context, req EnvelopeRequest) (string, error)
}
