package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fingertips/Ideal/pkg/protocol"
)

// generateTestKeyPair generates an RSA key pair with a self-signed
// certificate for signing tests.
func generateTestKeyPair(t *testing.T, commonName string) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{"Test Organization"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(certDER)
	require.NoError(t, err)

	return key, cert
}

func TestFingerprint(t *testing.T) {
	_, cert := generateTestKeyPair(t, "merchant")

	fingerprint := Fingerprint(cert)

	sum := sha1.Sum(cert.Raw)
	assert.Equal(t, strings.ToUpper(hex.EncodeToString(sum[:])), fingerprint)
	assert.Len(t, fingerprint, 40)
	assert.Equal(t, strings.ToUpper(fingerprint), fingerprint)
}

func TestStripWhitespace(t *testing.T) {
	tests := []struct {
		name    string
		policy  protocol.WhitespacePolicy
		message string
		want    string
	}{
		{"all whitespace removed", protocol.StripAllWhitespace, "a b\tc\nd\re\ff\vg", "abcdefg"},
		{"spaces survive control policy", protocol.StripControlWhitespace, "a b\tc\nd\re\ff\vg", "a bcdefg"},
		{"no whitespace", protocol.StripAllWhitespace, "abc", "abc"},
		{"empty", protocol.StripAllWhitespace, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripWhitespace(tt.message, tt.policy))
		})
	}
}

func TestTokenCode_Deterministic(t *testing.T) {
	key, _ := generateTestKeyPair(t, "merchant")
	message := "2026-08-24T12:00:00.000Z0001123456789"

	first, err := TokenCode(key, message, protocol.StripAllWhitespace)
	require.NoError(t, err)
	second, err := TokenCode(key, message, protocol.StripAllWhitespace)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotContains(t, first, "\n")
}

func TestTokenCode_FieldOrderMatters(t *testing.T) {
	key, _ := generateTestKeyPair(t, "merchant")

	ordered, err := TokenCode(key, "timestamp"+"0001"+"123456789", protocol.StripAllWhitespace)
	require.NoError(t, err)
	swapped, err := TokenCode(key, "timestamp"+"123456789"+"0001", protocol.StripAllWhitespace)
	require.NoError(t, err)

	assert.NotEqual(t, ordered, swapped)
}

func TestTokenCode_WhitespacePolicyChangesSignature(t *testing.T) {
	key, cert := generateTestKeyPair(t, "merchant")
	verifier, err := NewVerifier(cert)
	require.NoError(t, err)

	message := "order 1\nwith spaces"

	all, err := TokenCode(key, message, protocol.StripAllWhitespace)
	require.NoError(t, err)
	control, err := TokenCode(key, message, protocol.StripControlWhitespace)
	require.NoError(t, err)
	assert.NotEqual(t, all, control)

	// Each policy signs exactly its stripped form of the message.
	assert.True(t, verifier.VerifyTokenCode("order1withspaces", all))
	assert.True(t, verifier.VerifyTokenCode("order 1with spaces", control))
}

func TestTokenCode_MissingKey(t *testing.T) {
	_, err := TokenCode(nil, "message", protocol.StripAllWhitespace)
	assert.ErrorIs(t, err, ErrMissingPrivateKey)
}

func TestVerifyTokenCode(t *testing.T) {
	key, cert := generateTestKeyPair(t, "acquirer")
	verifier, err := NewVerifier(cert)
	require.NoError(t, err)

	message := "2026-08-24T12:00:00.000Z" + "0001023456789112" + "Success" + "NL53INGB0654422370"
	tokenCode, err := TokenCode(key, message, protocol.StripAllWhitespace)
	require.NoError(t, err)

	assert.True(t, verifier.VerifyTokenCode(message, tokenCode))
	assert.False(t, verifier.VerifyTokenCode(message+"x", tokenCode))
	assert.False(t, verifier.VerifyTokenCode(message, "not base64!!!"))

	otherKey, _ := generateTestKeyPair(t, "intruder")
	forged, err := TokenCode(otherKey, message, protocol.StripAllWhitespace)
	require.NoError(t, err)
	assert.False(t, verifier.VerifyTokenCode(message, forged))
}

func TestNewVerifier_Validation(t *testing.T) {
	_, err := NewVerifier(nil)
	assert.ErrorIs(t, err, ErrMissingCertificate)
}
