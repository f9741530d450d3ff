package pdf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/inkflow/signbridge/internal/platform/errors"
)

func TestFetchFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.7 fake body"))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL+"/contract.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !IsPDF(data) {
		t.Fatal("expected pdf bytes")
	}
}

func TestFetchRejectsNonPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	if errors.CodeOf(err) != errors.CodeInvalidDocument {
		t.Fatalf("expected INVALID_DOCUMENT, got %v", err)
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	if errors.CodeOf(err) != errors.CodeInvalidDocument {
		t.Fatalf("expected INVALID_DOCUMENT, got %v", err)
	}
}

func TestFetchFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 local"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	data, err := Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !IsPDF(data) {
		t.Fatal("expected pdf bytes")
	}
}

func TestFetchMissingFile(t *testing.T) {
	_, err := Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if errors.CodeOf(err) != errors.CodeInvalidDocument {
		t.Fatalf("expected INVALID_DOCUMENT, got %v", err)
	}
}

func TestCoerceFieldValue(t *testing.T) {
	cases := []struct {
		name  string
		kind  FieldKind
		value string
		want  string
	}{
		{"checkbox yes", FieldCheckbox, "yes", "true"},
		{"checkbox x", FieldCheckbox, " X ", "true"},
		{"checkbox no", FieldCheckbox, "no", "false"},
		{"checkbox empty", FieldCheckbox, "", "false"},
		{"number grouped", FieldNumber, "1,250.00", "1250.00"},
		{"number currency", FieldNumber, "$42", "42"},
		{"number negative", FieldNumber, "-3.5", "-3.5"},
		{"number non numeric", FieldNumber, "n/a", "n/a"},
		{"text trimmed", FieldText, "  Jane Doe ", "Jane Doe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceFieldValue(tc.kind, tc.value); got != tc.want {
				t.Fatalf("CoerceFieldValue(%v, %q) = %q, want %q", tc.kind, tc.value, got, tc.want)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"https://example.com/files/contract.pdf", "contract.pdf"},
		{"https://example.com/files/contract.pdf?sig=abc", "contract.pdf"},
		{"/tmp/agreement.PDF", "agreement.PDF"},
		{"https://example.com/download", "download.pdf"},
		{"", "document.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.ref, func(t *testing.T) {
			if got := BaseName(tc.ref); got != tc.want {
				t.Fatalf("BaseName(%q) = %q, want %q", tc.ref, got, tc.want)
			}
		})
	}
}
