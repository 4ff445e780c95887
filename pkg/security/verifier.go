package security

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/leifj/signedxml"

	"github.com/Fingertips/Ideal/pkg/protocol"
)

// Verifier judges response authenticity against the acquirer's public
// certificate. It supports both generations: enveloped XML-DSig for v3
// responses and the raw RSA-SHA1 field-concatenation scheme for v1 status
// responses.
type Verifier struct {
	cert      *x509.Certificate
	publicKey *rsa.PublicKey
}

// NewVerifier creates a verifier for the given acquirer certificate.
func NewVerifier(cert *x509.Certificate) (*Verifier, error) {
	if cert == nil {
		return nil, ErrMissingCertificate
	}
	publicKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSA
	}
	return &Verifier{cert: cert, publicKey: publicKey}, nil
}

// VerifyDocument validates the enveloped XML-DSig signature over a full
// response document. Any failure, including a document that carries no
// signature at all, means the response cannot be trusted.
func (v *Verifier) VerifyDocument(raw []byte) error {
	validator, err := signedxml.NewValidator(string(raw))
	if err != nil {
		return fmt.Errorf("parsing signed document: %w", err)
	}

	validator.Certificates = append(validator.Certificates, *v.cert)

	if _, err := validator.ValidateReferences(); err != nil {
		return fmt.Errorf("signature validation failed: %w", err)
	}
	return nil
}

// VerifyTokenCode checks a legacy RSA-SHA1 signature over the reconstructed
// response message. Decode failures are verification failures, not errors;
// the channel simply cannot be trusted.
func (v *Verifier) VerifyTokenCode(message, signatureValue string) bool {
	signature, err := base64.StdEncoding.DecodeString(StripWhitespace(signatureValue, protocol.StripAllWhitespace))
	if err != nil {
		return false
	}

	digest := sha1.Sum([]byte(message))
	return rsa.VerifyPKCS1v15(v.publicKey, crypto.SHA1, digest[:], signature) == nil
}
