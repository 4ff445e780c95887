package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/beevik/etree"
)

// Signer produces enveloped XML-DSig signatures for iDEAL v3 request
// documents: exclusive C14N, SHA-256 digest over the document minus the
// Signature subtree, and an RSA-SHA256 signature over SignedInfo. The
// KeyName carries the merchant certificate fingerprint so the acquirer can
// look up the registered public key.
type Signer struct {
	privateKey *rsa.PrivateKey
	cert       *x509.Certificate
}

// NewSigner creates a signer for the given merchant key and certificate.
// A missing key or certificate is a configuration error, reported before
// any document is touched.
func NewSigner(privateKey *rsa.PrivateKey, cert *x509.Certificate) (*Signer, error) {
	if privateKey == nil {
		return nil, ErrMissingPrivateKey
	}
	if cert == nil {
		return nil, ErrMissingCertificate
	}
	if _, ok := cert.PublicKey.(*rsa.PublicKey); !ok {
		return nil, ErrNotRSA
	}
	return &Signer{privateKey: privateKey, cert: cert}, nil
}

// Fingerprint returns the uppercase hex SHA1 fingerprint of the merchant
// certificate.
func (s *Signer) Fingerprint() string {
	return Fingerprint(s.cert)
}

// SignDocument appends an enveloped Signature element to the document's
// root. The digest is computed over the canonical form of the document
// before the Signature is attached, so the signed scope is exactly the
// document minus the Signature subtree.
func (s *Signer) SignDocument(doc *etree.Document) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("no root element found")
	}

	canonical, err := CanonicalizeExcluding(doc, "Signature")
	if err != nil {
		return err
	}
	digest := sha256.Sum256(canonical)

	// Signature elements live in the XML-DSig namespace, declared as the
	// default namespace the way acquirers emit it.
	sig := etree.NewElement("Signature")
	sig.CreateAttr("xmlns", NSXMLDSig)

	// SignedInfo carries its own namespace declaration so it canonicalizes
	// identically in isolation and in document context.
	signedInfo := sig.CreateElement("SignedInfo")
	signedInfo.CreateAttr("xmlns", NSXMLDSig)

	c14nMethod := signedInfo.CreateElement("CanonicalizationMethod")
	c14nMethod.CreateAttr("Algorithm", AlgorithmC14N)

	sigMethod := signedInfo.CreateElement("SignatureMethod")
	sigMethod.CreateAttr("Algorithm", AlgorithmRSASHA256)

	ref := signedInfo.CreateElement("Reference")
	ref.CreateAttr("URI", "")

	transforms := ref.CreateElement("Transforms")
	enveloped := transforms.CreateElement("Transform")
	enveloped.CreateAttr("Algorithm", AlgorithmEnvelopedSig)
	excC14N := transforms.CreateElement("Transform")
	excC14N.CreateAttr("Algorithm", AlgorithmC14N)

	digestMethod := ref.CreateElement("DigestMethod")
	digestMethod.CreateAttr("Algorithm", AlgorithmSHA256)

	digestValue := ref.CreateElement("DigestValue")
	digestValue.SetText(base64.StdEncoding.EncodeToString(digest[:]))

	canonicalSignedInfo, err := CanonicalizeElement(signedInfo)
	if err != nil {
		return err
	}
	signedInfoDigest := sha256.Sum256(canonicalSignedInfo)

	signature, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, signedInfoDigest[:])
	if err != nil {
		return fmt.Errorf("signing SignedInfo: %w", err)
	}

	sigValue := sig.CreateElement("SignatureValue")
	sigValue.SetText(base64.StdEncoding.EncodeToString(signature))

	keyInfo := sig.CreateElement("KeyInfo")
	keyName := keyInfo.CreateElement("KeyName")
	keyName.SetText(s.Fingerprint())

	root.AddChild(sig)
	return nil
}
