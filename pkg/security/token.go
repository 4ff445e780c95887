package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/Fingertips/Ideal/pkg/protocol"
)

// Authentication is the constant carried in the legacy Merchant block.
const Authentication = "SHA1_RSA"

// Fingerprint returns the uppercase hex SHA1 digest of the certificate's
// DER bytes. The legacy dialect calls this the token; XML-DSig carries it
// as the KeyName. Either way the acquirer uses it to look up the matching
// public key.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// StripWhitespace removes whitespace from a token message according to the
// configured policy.
func StripWhitespace(message string, policy protocol.WhitespacePolicy) string {
	return strings.Map(func(r rune) rune {
		switch policy {
		case protocol.StripControlWhitespace:
			switch r {
			case '\f', '\n', '\r', '\t', '\v':
				return -1
			}
			return r
		default:
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}
	}, message)
}

// TokenCode signs a token message with RSA-SHA1 and returns the base64
// signature value. The message is whitespace-stripped per policy before
// hashing; the output contains no line breaks.
func TokenCode(key *rsa.PrivateKey, message string, policy protocol.WhitespacePolicy) (string, error) {
	if key == nil {
		return "", ErrMissingPrivateKey
	}

	stripped := StripWhitespace(message, policy)
	digest := sha1.Sum([]byte(stripped))

	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, digest[:])
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}
