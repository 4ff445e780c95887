// Package security implements the cryptographic core of the iDEAL client:
// exclusive XML canonicalization, the legacy token/tokenCode scheme, and
// enveloped XML-DSig signing and verification.
//
// XML signature validation is delegated to the signedxml package.
package security

import "errors"

// Algorithm URIs for XML signatures
const (
	AlgorithmC14N         = "http://www.w3.org/2001/10/xml-exc-c14n#"
	AlgorithmRSASHA256    = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgorithmSHA256       = "http://www.w3.org/2001/04/xmlenc#sha256"
	AlgorithmEnvelopedSig = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
	NSXMLDSig             = "http://www.w3.org/2000/09/xmldsig#"
)

// Common errors
var (
	// ErrMissingPrivateKey is returned when a signer is constructed
	// without a private key.
	ErrMissingPrivateKey = errors.New("private key is required")
	// ErrMissingCertificate is returned when a signer or verifier is
	// constructed without a certificate.
	ErrMissingCertificate = errors.New("certificate is required")
	// ErrNotRSA is returned when a key or certificate does not carry RSA
	// material. iDEAL mandates RSA for both generations.
	ErrNotRSA = errors.New("RSA key material is required")
)
