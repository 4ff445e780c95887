package message

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/Fingertips/Ideal/pkg/protocol"
	"github.com/Fingertips/Ideal/pkg/security"
)

// Builder assembles the three request document shapes for one merchant and
// one protocol generation. It is stateless across requests and safe for
// concurrent use.
type Builder struct {
	version    protocol.Version
	merchantID string
	subID      string
}

// NewBuilder creates a request builder. The merchant ID must already be
// normalized (nine digits, left-zero-padded).
func NewBuilder(version protocol.Version, merchantID string, subID int) *Builder {
	return &Builder{
		version:    version,
		merchantID: merchantID,
		subID:      strconv.Itoa(subID),
	}
}

// TransactionOptions carries the caller-supplied fields of a transaction
// request. Currency and Language default to the iDEAL constants when
// empty; everything else is required.
type TransactionOptions struct {
	IssuerID         string
	OrderID          string // becomes the purchaseID on the wire
	ExpirationPeriod string // ISO 8601 duration, e.g. "PT10M"
	ReturnURL        string
	Description      string
	EntranceCode     string
	Currency         string
	Language         string
}

// Request is a request document moving through its lifecycle: populated at
// construction, then signed, then serialized. The token message (the
// protocol-ordered field concatenation the legacy scheme signs) is fixed
// at construction time.
type Request struct {
	Kind    protocol.Kind
	version protocol.Version

	doc          *etree.Document
	tokenMessage string
	tokenEl      *etree.Element
	tokenCodeEl  *etree.Element
	signed       bool
}

// Document exposes the underlying DOM, primarily for tests and for the
// XML-DSig signer.
func (r *Request) Document() *etree.Document { return r.doc }

// TokenMessage returns the legacy concatenation to be signed. Field order
// is protocol-mandated and differs per request kind.
func (r *Request) TokenMessage() string { return r.tokenMessage }

// Signed reports whether a signature has been embedded.
func (r *Request) Signed() bool { return r.signed }

// SignToken fills the legacy token and tokenCode elements: the token is
// the merchant certificate fingerprint, the tokenCode an RSA-SHA1
// signature over the whitespace-stripped token message.
func (r *Request) SignToken(key *rsa.PrivateKey, cert *x509.Certificate, policy protocol.WhitespacePolicy) error {
	if r.version.Mode != protocol.SignatureModeToken {
		return fmt.Errorf("token signing requires protocol version %s", protocol.V1.Name)
	}
	if cert == nil {
		return security.ErrMissingCertificate
	}

	tokenCode, err := security.TokenCode(key, r.tokenMessage, policy)
	if err != nil {
		return err
	}

	r.tokenEl.SetText(security.Fingerprint(cert))
	r.tokenCodeEl.SetText(tokenCode)
	r.signed = true
	return nil
}

// SignXMLDSig appends an enveloped XML-DSig signature to the document.
func (r *Request) SignXMLDSig(signer *security.Signer) error {
	if r.version.Mode != protocol.SignatureModeXMLDSig {
		return fmt.Errorf("XML-DSig signing requires protocol version %s", protocol.V3.Name)
	}
	if err := signer.SignDocument(r.doc); err != nil {
		return err
	}
	r.signed = true
	return nil
}

// Serialize renders the signed document as compact UTF-8 XML. Compact
// output matters: indentation would add text nodes that change the
// canonical form the acquirer recomputes. Serializing an unsigned request
// is an error.
func (r *Request) Serialize() ([]byte, error) {
	if !r.signed {
		return nil, ErrUnsignedRequest
	}
	return r.doc.WriteToBytes()
}

// DirectoryRequest builds a DirectoryReq document.
func (b *Builder) DirectoryRequest(now time.Time) (*Request, error) {
	ts := now.UTC().Format(TimestampFormat)
	req := b.newRequest(protocol.KindDirectory, "DirectoryReq", ts)

	merchant := req.doc.Root().CreateElement("Merchant")
	b.fillMerchant(req, merchant)

	req.tokenMessage = ts + b.merchantID + b.subID
	return req, nil
}

// TransactionRequest validates the options and builds an AcquirerTrxReq
// document. Validation happens before any cryptography or network I/O.
func (b *Builder) TransactionRequest(now time.Time, amount decimal.Decimal, opts TransactionOptions) (*Request, error) {
	if opts.Currency == "" {
		opts.Currency = Currency
	}
	if opts.Language == "" {
		opts.Language = Language
	}

	amountStr, err := b.formatAmount(amount)
	if err != nil {
		return nil, err
	}
	if err := validateTransactionOptions(opts, amountStr); err != nil {
		return nil, err
	}

	ts := now.UTC().Format(TimestampFormat)
	req := b.newRequest(protocol.KindTransaction, "AcquirerTrxReq", ts)
	root := req.doc.Root()

	if b.version.Mode == protocol.SignatureModeToken {
		issuer := root.CreateElement("Issuer")
		issuer.CreateElement("issuerID").SetText(opts.IssuerID)

		merchant := root.CreateElement("Merchant")
		b.fillMerchant(req, merchant)
		merchant.CreateElement("merchantReturnURL").SetText(opts.ReturnURL)
	} else {
		merchant := root.CreateElement("Merchant")
		b.fillMerchant(req, merchant)
		merchant.CreateElement("merchantReturnURL").SetText(opts.ReturnURL)

		issuer := root.CreateElement("Issuer")
		issuer.CreateElement("issuerID").SetText(opts.IssuerID)
	}

	transaction := root.CreateElement("Transaction")
	transaction.CreateElement("purchaseID").SetText(opts.OrderID)
	transaction.CreateElement("amount").SetText(amountStr)
	transaction.CreateElement("currency").SetText(opts.Currency)
	transaction.CreateElement("expirationPeriod").SetText(opts.ExpirationPeriod)
	transaction.CreateElement("language").SetText(opts.Language)
	transaction.CreateElement("description").SetText(opts.Description)
	transaction.CreateElement("entranceCode").SetText(opts.EntranceCode)

	req.tokenMessage = ts + opts.IssuerID + b.merchantID + b.subID +
		opts.ReturnURL + opts.OrderID + amountStr + opts.Currency +
		opts.Language + opts.Description + opts.EntranceCode
	return req, nil
}

// StatusRequest builds an AcquirerStatusReq document for a transaction.
func (b *Builder) StatusRequest(now time.Time, transactionID string) (*Request, error) {
	if transactionID == "" {
		return nil, &MissingOptionsError{Options: []string{"transaction_id"}}
	}

	ts := now.UTC().Format(TimestampFormat)
	req := b.newRequest(protocol.KindStatus, "AcquirerStatusReq", ts)
	root := req.doc.Root()

	merchant := root.CreateElement("Merchant")
	b.fillMerchant(req, merchant)

	transaction := root.CreateElement("Transaction")
	transaction.CreateElement("transactionID").SetText(transactionID)

	req.tokenMessage = ts + b.merchantID + b.subID + transactionID
	return req, nil
}

func (b *Builder) newRequest(kind protocol.Kind, rootName, ts string) *Request {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(rootName)
	root.CreateAttr("xmlns", b.version.Namespace)
	root.CreateAttr("version", b.version.Name)
	root.CreateElement(b.version.TimestampTag).SetText(ts)

	return &Request{Kind: kind, version: b.version, doc: doc}
}

// fillMerchant writes the Merchant block. In the legacy dialect it carries
// the authentication constant and empty token/tokenCode elements that
// SignToken fills in later; element order is schema-mandated.
func (b *Builder) fillMerchant(req *Request, merchant *etree.Element) {
	merchant.CreateElement("merchantID").SetText(b.merchantID)
	merchant.CreateElement("subID").SetText(b.subID)

	if b.version.Mode == protocol.SignatureModeToken {
		merchant.CreateElement("authentication").SetText(security.Authentication)
		req.tokenEl = merchant.CreateElement("token")
		req.tokenCodeEl = merchant.CreateElement("tokenCode")
	}
}

// formatAmount serializes the amount per generation: integer cents for the
// legacy dialect, two-decimal currency units for the current one. The
// conversion boundary lives here and nowhere else.
func (b *Builder) formatAmount(amount decimal.Decimal) (string, error) {
	if amount.Sign() <= 0 {
		return "", &ValidationError{Field: "amount", Value: amount.String(), Constraint: "must be positive"}
	}
	if b.version.AmountInCents {
		cents := amount.Shift(2)
		if !cents.IsInteger() {
			return "", &ValidationError{Field: "amount", Value: amount.String(), Constraint: "must not have sub-cent precision"}
		}
		return cents.String(), nil
	}
	return amount.StringFixed(2), nil
}

func validateTransactionOptions(opts TransactionOptions, amountStr string) error {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"issuer_id", opts.IssuerID},
		{"expiration_period", opts.ExpirationPeriod},
		{"return_url", opts.ReturnURL},
		{"order_id", opts.OrderID},
		{"description", opts.Description},
		{"entrance_code", opts.EntranceCode},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &MissingOptionsError{Options: missing}
	}

	for _, field := range []struct {
		name, value string
		max         int
	}{
		{"order_id", opts.OrderID, MaxOrderIDLength},
		{"description", opts.Description, MaxDescriptionLength},
		{"entrance_code", opts.EntranceCode, MaxEntranceCodeLength},
		{"amount", amountStr, MaxAmountLength},
	} {
		if utf8.RuneCountInString(field.value) > field.max {
			return &ValidationError{
				Field:      field.name,
				Value:      field.value,
				Constraint: fmt.Sprintf("at most %d characters", field.max),
			}
		}
		if containsDiacriticals(field.value) {
			return &ValidationError{
				Field:      field.name,
				Value:      field.value,
				Constraint: "diacritical characters are not allowed",
			}
		}
	}
	return nil
}
