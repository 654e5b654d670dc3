package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretGetter fetches a secret's string value by name
type SecretGetter interface {
	GetSecretString(ctx context.Context, name string) (string, error)
}

// API is the subset of the Secrets Manager client used here
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Manager reads secrets from AWS Secrets Manager
type Manager struct {
	api API
}

// NewManager creates a Manager from the default AWS credential chain
// (AWS_REGION, AWS_PROFILE, AWS_ACCESS_KEY_ID/SECRET, instance role). A non-empty
// region overrides the environment.
func NewManager(ctx context.Context, region string) (*Manager, error) {
	var opts []func(*awsConfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsConfig.WithRegion(region))
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewManagerFromAPI(secretsmanager.NewFromConfig(cfg)), nil
}

// NewManagerFromAPI wraps an existing Secrets Manager client
func NewManagerFromAPI(api API) *Manager {
	return &Manager{api: api}
}

// GetSecretString returns the secret's string value, falling back to its binary value
func (m *Manager) GetSecretString(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("secret name required")
	}
	out, err := m.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString != nil {
		return aws.ToString(out.SecretString), nil
	}
	if len(out.SecretBinary) > 0 {
		return string(out.SecretBinary), nil
	}
	return "", fmt.Errorf("secret %s has no value", name)
}
