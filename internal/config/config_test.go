package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/ema-randomizer/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.Randomizer.MaxAttempts)
	assert.Equal(t, string(models.BoundScopeParticipant), cfg.Randomizer.BoundScope)
	assert.False(t, cfg.Randomizer.AbortOnInvalid)
	assert.Equal(t, models.DefaultFieldNames(), cfg.FieldNames())
	assert.Equal(t, "https://designer.mydatahelps.org", cfg.MDH.BaseURL)
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `environment: staging
randomizer:
  boundscope: category
  maxattempts: 3
fields:
  historyprefix: served_
mdh:
  projectid: from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("RKS_PROJECT_ID", "from-env")
	t.Setenv("RKS_SERVICE_ACCOUNT", "svc")
	t.Setenv("EMA_ABORT_ON_INVALID", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "category", cfg.Randomizer.BoundScope)
	assert.Equal(t, 3, cfg.Randomizer.MaxAttempts)
	assert.True(t, cfg.Randomizer.AbortOnInvalid)
	assert.Equal(t, "served_", cfg.FieldNames().HistoryPrefix)
	assert.Equal(t, "from-env", cfg.MDH.ProjectID)
	assert.Equal(t, "svc", cfg.MDH.ServiceAccount)
}

func TestLoad_InvalidBoundScope(t *testing.T) {
	t.Setenv("EMA_BOUND_SCOPE", "study")
	cfg, err := Load(t.TempDir())
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "bound scope")
}

type fakeSecrets struct {
	value string
	err   error
	names []string
}

func (f *fakeSecrets) GetSecretString(ctx context.Context, name string) (string, error) {
	f.names = append(f.names, name)
	return f.value, f.err
}

func TestResolveCredentials_Environment(t *testing.T) {
	cfg := &Config{Environment: "development", MDH: MDHConfig{ProjectID: "proj", ServiceAccount: "svc", PrivateKey: "key"}}
	creds, err := ResolveCredentials(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, &Credentials{ProjectID: "proj", ServiceAccount: "svc", PrivateKey: "key"}, creds)

	cfg.MDH.PrivateKey = ""
	_, err = ResolveCredentials(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestResolveCredentials_Production(t *testing.T) {
	cfg := &Config{Environment: EnvironmentProduction, AWS: AWSConfig{SecretName: "prod/rks"}}
	getter := &fakeSecrets{value: `{"RKS_PROJECT_ID":"proj","RKS_SERVICE_ACCOUNT":"svc","RKS_PRIVATE_KEY":"key"}`}

	creds, err := ResolveCredentials(context.Background(), cfg, getter)
	require.NoError(t, err)
	assert.Equal(t, "proj", creds.ProjectID)
	assert.Equal(t, "svc", creds.ServiceAccount)
	assert.Equal(t, []string{"prod/rks"}, getter.names)
}

func TestResolveCredentials_ProductionErrors(t *testing.T) {
	cfg := &Config{Environment: EnvironmentProduction, AWS: AWSConfig{SecretName: "prod/rks"}}

	_, err := ResolveCredentials(context.Background(), cfg, nil)
	assert.Error(t, err)

	_, err = ResolveCredentials(context.Background(), cfg, &fakeSecrets{err: errors.New("denied")})
	assert.ErrorContains(t, err, "denied")

	_, err = ResolveCredentials(context.Background(), cfg, &fakeSecrets{value: "not json"})
	assert.ErrorContains(t, err, "decode secret")

	_, err = ResolveCredentials(context.Background(), cfg, &fakeSecrets{value: `{"RKS_PROJECT_ID":"proj"}`})
	assert.ErrorContains(t, err, "RKS_SERVICE_ACCOUNT")
}
