// Package docusign implements the esign.Backend capability interface
// against the DocuSign eSignature REST API v2.1, authenticating with the
// JWT grant flow.
package docusign

import (
	"fmt"
	"net/http"
	"time"

	"github.com/inkflow/signbridge/internal/platform/errors"
)

// Known environment base URLs. An envelope created in one environment is
// invisible in the other, which surfaces as a 404.
const (
	DemoBaseURL       = "https://demo.docusign.net"
	ProductionBaseURL = "https://www.docusign.net"

	DemoAuthServer       = "https://account-d.docusign.com"
	ProductionAuthServer = "https://account.docusign.com"
)

const requestTimeout = 30 * time.Second

// Config carries DocuSign credentials and environment selection.
type Config struct {
	AccountID      string `env:"SIGNBRIDGE_DOCUSIGN_ACCOUNT_ID"`
	IntegrationKey string `env:"SIGNBRIDGE_DOCUSIGN_INTEGRATION_KEY"`
	UserID         string `env:"SIGNBRIDGE_DOCUSIGN_USER_ID"`
	PrivateKey     string `env:"SIGNBRIDGE_DOCUSIGN_PRIVATE_KEY"`
	BaseURL        string `env:"SIGNBRIDGE_DOCUSIGN_BASE_URL" envDefault:"https://demo.docusign.net"`
	AuthServer     string `env:"SIGNBRIDGE_DOCUSIGN_AUTH_SERVER" envDefault:"https://account-d.docusign.com"`
}

// Validate reports whether the config names every credential the JWT grant
// needs.
func (c Config) Validate() error {
	missing := []string{}
	if c.AccountID == "" {
		missing = append(missing, "account id")
	}
	if c.IntegrationKey == "" {
		missing = append(missing, "integration key")
	}
	if c.UserID == "" {
		missing = append(missing, "user id")
	}
	if c.PrivateKey == "" {
		missing = append(missing, "private key")
	}
	if len(missing) > 0 {
		return errors.New(errors.CodeConfigIncomplete, fmt.Sprintf("docusign config missing: %v", missing))
	}
	return nil
}

// Environment returns a short label for the configured base URL.
func (c Config) Environment() string {
	if c.BaseURL == ProductionBaseURL {
		return "production"
	}
	return "demo"
}

// Client talks to one DocuSign account. It satisfies esign.Backend.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *tokenSource
}

// New builds a client from config. The config must pass Validate; the
// first API call triggers token acquisition.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: requestTimeout}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     newTokenSource(cfg, httpClient),
	}, nil
}
