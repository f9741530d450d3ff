// Package errors provides structured error handling with machine codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Reference resolution errors
	CodeMissingReference  Code = "MISSING_REFERENCE"
	CodeInvalidLinkFormat Code = "INVALID_LINK_FORMAT"

	// Capability errors
	CodeUnsupportedOperation Code = "UNSUPPORTED_OPERATION"

	// Envelope lifecycle errors
	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	CodeNoFillableTarget       Code = "NO_FILLABLE_TARGET"
	CodeSigningAuthFailed      Code = "SIGNING_AUTH_FAILED"

	// Provider errors
	CodeBackendError                 Code = "BACKEND_ERROR"
	CodeEnvironmentMismatchSuspected Code = "ENVIRONMENT_MISMATCH_SUSPECTED"

	// Extraction errors
	CodeExtractionEmpty Code = "EXTRACTION_EMPTY"

	// Document errors
	CodeInvalidDocument Code = "INVALID_DOCUMENT"

	// Client bootstrap errors
	CodeConfigIncomplete Code = "CONFIG_INCOMPLETE"
	CodeAuthFailed       Code = "AUTH_FAILED"
)

// UserMessage maps domain codes to messages suitable for returning to a
// calling agent when no more specific message is available.
func (c Code) UserMessage() string {
	switch c {
	case CodeMissingReference:
		return "no envelope reference provided; supply an envelope_id, link, or security_code"
	case CodeInvalidLinkFormat:
		return "the provided link does not contain a recognizable envelope identifier"
	case CodeUnsupportedOperation:
		return "this lookup method is not supported by the signature provider"
	case CodeInvalidStateTransition:
		return "the envelope status does not allow this operation"
	case CodeNoFillableTarget:
		return "the envelope has no fillable document or recipient"
	case CodeSigningAuthFailed:
		return "the signature provider rejected the signing session credentials"
	case CodeBackendError:
		return "the signature provider returned an error"
	case CodeEnvironmentMismatchSuspected:
		return "the envelope was not found; it may live in a different environment"
	case CodeExtractionEmpty:
		return "no envelope identifiers or access codes were found in the text"
	case CodeInvalidDocument:
		return "the referenced file is not a valid PDF document"
	case CodeConfigIncomplete:
		return "the signature provider credentials are not fully configured"
	case CodeAuthFailed:
		return "authentication with the signature provider failed"
	default:
		return "an unexpected error occurred"
	}
}
