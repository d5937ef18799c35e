package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"passlink/pkg/tracing"
)

// ScopeIssuer is the only OAuth scope the wallet objects API needs.
const ScopeIssuer = "https://www.googleapis.com/auth/wallet_object.issuer"

// ServiceAccount is the subset of a Google service-account key file this
// package needs: the identity for the save-link issuer claim and the RSA key
// that signs it.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// LoadServiceAccount reads and validates a service-account key file. A missing
// or malformed file is a configuration error; callers treat it as fatal.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account key %s: %w", path, err)
	}
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("parse service account key %s: %w", path, err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account key %s missing client_email or private_key", path)
	}
	return &sa, nil
}

// SigningKey parses the PEM private key into a signing key for jwx.
func (sa *ServiceAccount) SigningKey() (jwk.Key, error) {
	key, err := jwk.ParseKey([]byte(sa.PrivateKey), jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}
	return key, nil
}

// NewAuthenticatedClient builds an HTTP client that attaches a bearer
// credential for the wallet issuer scope to every request. The base transport
// is traced when tracing is enabled.
func NewAuthenticatedClient(ctx context.Context, keyFile string, timeout time.Duration) (*http.Client, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key %s: %w", keyFile, err)
	}
	conf, err := google.JWTConfigFromJSON(data, ScopeIssuer)
	if err != nil {
		return nil, fmt.Errorf("build credentials from %s: %w", keyFile, err)
	}
	base := &http.Client{Transport: tracing.Transport(nil)}
	client := conf.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	client.Timeout = timeout
	return client, nil
}
