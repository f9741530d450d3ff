// Package pdf loads and validates PDF documents referenced by URL or local
// path. Form filling itself happens provider-side through envelope tabs;
// this package only prepares document bytes for upload.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/inkflow/signbridge/internal/platform/errors"
)

const (
	fetchTimeout = 30 * time.Second

	// maxDocumentSize bounds in-memory document loading.
	maxDocumentSize = 25 << 20
)

var magic = []byte("%PDF")

// Fetch loads document bytes from an http(s) URL or a local file path and
// verifies they look like a PDF.
func Fetch(ctx context.Context, ref string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		data, err = fetchURL(ctx, ref)
	} else {
		data, err = os.ReadFile(ref)
		if err != nil {
			err = errors.Wrap(errors.CodeInvalidDocument, "read document file", err)
		}
	}
	if err != nil {
		return nil, err
	}

	if !IsPDF(data) {
		return nil, errors.WithMetadata(errors.CodeInvalidDocument,
			"document does not start with the PDF magic bytes",
			map[string]string{"ref": ref})
	}
	return data, nil
}

// IsPDF reports whether data carries the %PDF file signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidDocument, "build document request", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidDocument, "fetch document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeInvalidDocument,
			fmt.Sprintf("document fetch returned %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidDocument, "read document body", err)
	}
	if len(data) > maxDocumentSize {
		return nil, errors.New(errors.CodeInvalidDocument, "document exceeds the size limit")
	}
	return data, nil
}

// FieldKind classifies a fillable field for value coercion.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldCheckbox
	FieldNumber
)

// CoerceFieldValue normalizes an agent-supplied field value for the given
// field kind. Checkbox values collapse to "true"/"false", number values are
// stripped of grouping separators and surrounding noise, and text values
// pass through trimmed.
func CoerceFieldValue(kind FieldKind, value string) string {
	trimmed := strings.TrimSpace(value)
	switch kind {
	case FieldCheckbox:
		switch strings.ToLower(trimmed) {
		case "true", "yes", "y", "x", "on", "1", "checked":
			return "true"
		}
		return "false"
	case FieldNumber:
		cleaned := strings.Map(func(r rune) rune {
			switch {
			case r >= '0' && r <= '9', r == '.', r == '-':
				return r
			}
			return -1
		}, trimmed)
		if cleaned == "" {
			return trimmed
		}
		return cleaned
	default:
		return trimmed
	}
}

// BaseName derives a document name from a URL or path, defaulting to
// document.pdf when the reference has no usable final segment.
func BaseName(ref string) string {
	trimmed := strings.TrimSuffix(ref, "/")
	if i := strings.LastIndexAny(trimmed, "/\\"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "document.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(trimmed), ".pdf") {
		trimmed += ".pdf"
	}
	return trimmed
}
