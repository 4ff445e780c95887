package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ideal.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
merchant:
  id: "123456789"
  subId: 1
  privateKeyFile: /etc/ideal/merchant.key
  certificateFile: /etc/ideal/merchant.crt
  acquirerCertificateFile: /etc/ideal/acquirer.crt
acquirer: ing
environment: live
protocol: "1.1.0"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123456789", cfg.Merchant.ID)
	assert.Equal(t, 1, cfg.Merchant.SubID)
	assert.Equal(t, "/etc/ideal/merchant.key", cfg.Merchant.PrivateKeyFile)
	assert.Equal(t, "/etc/ideal/acquirer.crt", cfg.Merchant.AcquirerCertificateFile)
	assert.Equal(t, "ing", cfg.Acquirer)
	assert.Equal(t, "live", cfg.Environment)
	assert.Equal(t, "1.1.0", cfg.Protocol)
	assert.False(t, cfg.TestMode())
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
merchant:
  id: "123456789"
  privateKeyFile: merchant.key
  certificateFile: merchant.crt
acquirer: rabobank
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "3.3.1", cfg.Protocol)
	assert.Equal(t, 0, cfg.Merchant.SubID)
	assert.True(t, cfg.TestMode())
}

func TestLoad_EnvironmentVariableExpansion(t *testing.T) {
	t.Setenv("IDEAL_PASSPHRASE", "s3cret")
	t.Setenv("IDEAL_KEY_DIR", "/run/secrets")

	path := writeConfig(t, `
merchant:
  id: "123456789"
  passphrase: ${IDEAL_PASSPHRASE}
  privateKeyFile: ${IDEAL_KEY_DIR}/merchant.key
  certificateFile: ${IDEAL_KEY_DIR}/merchant.crt
acquirer: ing
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Merchant.Passphrase)
	assert.Equal(t, "/run/secrets/merchant.key", cfg.Merchant.PrivateKeyFile)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing merchant id",
			`
merchant:
  privateKeyFile: merchant.key
  certificateFile: merchant.crt
acquirer: ing
`,
			"merchant.id is required",
		},
		{
			"missing private key file",
			`
merchant:
  id: "123456789"
  certificateFile: merchant.crt
acquirer: ing
`,
			"merchant.privateKeyFile is required",
		},
		{
			"missing certificate file",
			`
merchant:
  id: "123456789"
  privateKeyFile: merchant.key
acquirer: ing
`,
			"merchant.certificateFile is required",
		},
		{
			"missing acquirer",
			`
merchant:
  id: "123456789"
  privateKeyFile: merchant.key
  certificateFile: merchant.crt
`,
			"acquirer is required",
		},
		{
			"invalid environment",
			`
merchant:
  id: "123456789"
  privateKeyFile: merchant.key
  certificateFile: merchant.crt
acquirer: ing
environment: staging
`,
			"environment must be 'test' or 'live'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "merchant: [unclosed"))
	assert.Error(t, err)
}
