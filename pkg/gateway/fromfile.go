package gateway

import (
	"crypto/x509"
	"fmt"

	"github.com/Fingertips/Ideal/internal/config"
	"github.com/Fingertips/Ideal/internal/keystore"
	"github.com/Fingertips/Ideal/pkg/acquirer"
	"github.com/Fingertips/Ideal/pkg/protocol"
)

// LoadFromFile builds a Gateway from a YAML configuration file: merchant
// identity and key files, acquirer name, environment and protocol
// version. Every configuration problem surfaces here, before any request
// is attempted.
func LoadFromFile(path string) (*Gateway, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	acq, err := acquirer.Lookup(cfg.Acquirer)
	if err != nil {
		return nil, err
	}

	version, err := protocol.ParseVersion(cfg.Protocol)
	if err != nil {
		return nil, err
	}

	privateKey, err := keystore.LoadPrivateKey(cfg.Merchant.PrivateKeyFile, cfg.Merchant.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("loading merchant key: %w", err)
	}

	certificate, err := keystore.LoadCertificate(cfg.Merchant.CertificateFile)
	if err != nil {
		return nil, fmt.Errorf("loading merchant certificate: %w", err)
	}

	var acquirerCert *x509.Certificate
	if cfg.Merchant.AcquirerCertificateFile != "" {
		acquirerCert, err = keystore.LoadCertificate(cfg.Merchant.AcquirerCertificateFile)
		if err != nil {
			return nil, fmt.Errorf("loading acquirer certificate: %w", err)
		}
	}

	return New(Config{
		Merchant: Merchant{
			ID:          cfg.Merchant.ID,
			SubID:       cfg.Merchant.SubID,
			PrivateKey:  privateKey,
			Certificate: certificate,
		},
		Acquirer:            acq,
		Version:             version,
		AcquirerCertificate: acquirerCert,
		TestMode:            cfg.TestMode(),
	})
}
