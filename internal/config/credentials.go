package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ArowuTest/ema-randomizer/pkg/secrets"
)

// Secret keys inside the production secret
const (
	secretProjectID      = "RKS_PROJECT_ID"
	secretServiceAccount = "RKS_SERVICE_ACCOUNT"
	secretPrivateKey     = "RKS_PRIVATE_KEY"
)

// Credentials are the participant directory credentials for one run
type Credentials struct {
	ProjectID      string
	ServiceAccount string
	PrivateKey     string
}

// ResolveCredentials returns the directory credentials for the deployment mode. In
// production they are read from the configured secret; elsewhere from the environment.
func ResolveCredentials(ctx context.Context, cfg *Config, getter secrets.SecretGetter) (*Credentials, error) {
	if !cfg.IsProduction() {
		if cfg.MDH.ServiceAccount == "" || cfg.MDH.PrivateKey == "" {
			return nil, errors.New("RKS_SERVICE_ACCOUNT and RKS_PRIVATE_KEY must be set")
		}
		return &Credentials{
			ProjectID:      cfg.MDH.ProjectID,
			ServiceAccount: cfg.MDH.ServiceAccount,
			PrivateKey:     cfg.MDH.PrivateKey,
		}, nil
	}

	if getter == nil {
		return nil, errors.New("secrets manager required in production")
	}
	raw, err := getter.GetSecretString(ctx, cfg.AWS.SecretName)
	if err != nil {
		return nil, err
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode secret %s: %w", cfg.AWS.SecretName, err)
	}
	creds := &Credentials{
		ProjectID:      values[secretProjectID],
		ServiceAccount: values[secretServiceAccount],
		PrivateKey:     values[secretPrivateKey],
	}
	if creds.ServiceAccount == "" || creds.PrivateKey == "" {
		return nil, fmt.Errorf("secret %s is missing %s or %s", cfg.AWS.SecretName, secretServiceAccount, secretPrivateKey)
	}
	return creds, nil
}
