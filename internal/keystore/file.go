// Package keystore loads merchant and acquirer key material from PEM
// files on disk.
//
// Merchant private keys may be passphrase-protected; both PKCS#1 and
// PKCS#8 encodings are accepted, plus the legacy encrypted-PEM form older
// merchant key sets still use. iDEAL mandates RSA keys for both protocol
// generations, so anything else is rejected at load time.
package keystore

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// Common errors
var (
	ErrNoPEMData = errors.New("no PEM block found")
	ErrNotRSAKey = errors.New("key is not an RSA key")
)

// LoadPrivateKey reads and parses an RSA private key from a PEM file.
// The passphrase is used only when the key is encrypted; pass "" for
// unencrypted keys.
func LoadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	keyPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	key, err := ParsePrivateKey(keyPEM, passphrase)
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", path, err)
	}
	return key, nil
}

// ParsePrivateKey parses an RSA private key from PEM data.
func ParsePrivateKey(pemData []byte, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, ErrNoPEMData
	}

	der := block.Bytes
	if x509.IsEncryptedPEMBlock(block) {
		decrypted, err := x509.DecryptPEMBlock(block, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("decrypting key: %w", err)
		}
		der = decrypted
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(der)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(der)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrNotRSAKey
		}
		return rsaKey, nil
	default:
		return nil, fmt.Errorf("unsupported key type: %s", block.Type)
	}
}

// LoadCertificate reads and parses an X.509 certificate from a PEM file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	certPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading certificate file: %w", err)
	}

	cert, err := ParseCertificate(certPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing certificate %s: %w", path, err)
	}
	return cert, nil
}

// ParseCertificate parses an X.509 certificate from PEM data.
func ParseCertificate(pemData []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, ErrNoPEMData
	}
	return x509.ParseCertificate(block.Bytes)
}
