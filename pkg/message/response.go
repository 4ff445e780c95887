package message

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/Fingertips/Ideal/pkg/protocol"
	"github.com/Fingertips/Ideal/pkg/security"
)

// response is the shared core of every response variant: a DOM constructed
// once from the received bytes, immutable afterwards. Error responses
// (root element ErrorRes) can stand in for any variant.
type response struct {
	raw      []byte
	doc      *etree.Document
	root     *etree.Element
	version  protocol.Version
	verifier *security.Verifier
	testMode bool
	errorRes bool
}

func parseResponse(raw []byte, expectedRoot string, version protocol.Version, verifier *security.Verifier, testMode bool) (response, error) {
	doc, err := security.ParseDocument(raw)
	if err != nil {
		return response{}, err
	}

	root := doc.Root()
	if root.Tag != expectedRoot && root.Tag != "ErrorRes" {
		return response{}, fmt.Errorf("unexpected response document %s, want %s", root.Tag, expectedRoot)
	}

	return response{
		raw:      raw,
		doc:      doc,
		root:     root,
		version:  version,
		verifier: verifier,
		testMode: testMode,
		errorRes: root.Tag == "ErrorRes",
	}, nil
}

// text returns the trimmed text of the first element matched by path, or
// the empty string.
func (r *response) text(path string) string {
	if el := r.root.FindElement(path); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// Success reports whether the acquirer accepted the request. It is always
// derived, never read from the document.
func (r *response) Success() bool { return !r.errorRes }

// TestMode reports whether the call ran against the acquirer's test
// environment.
func (r *response) TestMode() bool { return r.testMode }

// IsError reports whether the acquirer answered with an ErrorRes document.
func (r *response) IsError() bool { return r.errorRes }

// ErrorCode returns the acquirer error code, or "" on success.
func (r *response) ErrorCode() string {
	if !r.errorRes {
		return ""
	}
	return r.text("./Error/errorCode")
}

// ErrorMessage returns the acquirer error message, or "" on success.
func (r *response) ErrorMessage() string {
	if !r.errorRes {
		return ""
	}
	return r.text("./Error/errorMessage")
}

// ErrorDetail returns the acquirer error detail, or "" on success.
func (r *response) ErrorDetail() string {
	if !r.errorRes {
		return ""
	}
	return r.text("./Error/errorDetail")
}

// ConsumerMessage returns the message the merchant may show the consumer,
// or "" on success.
func (r *response) ConsumerMessage() string {
	if !r.errorRes {
		return ""
	}
	return r.text("./Error/consumerMessage")
}

// ErrorType maps the error code prefix to a category (xml, system,
// security, value, application). It returns "" on success and for unknown
// prefixes.
func (r *response) ErrorType() string {
	return ErrorTypeForCode(r.ErrorCode())
}

// DirectoryResponse carries the issuer directory.
type DirectoryResponse struct {
	response
}

// ParseDirectoryResponse constructs a DirectoryResponse from received
// bytes. Malformed XML is a fatal error.
func ParseDirectoryResponse(raw []byte, version protocol.Version, verifier *security.Verifier, testMode bool) (*DirectoryResponse, error) {
	core, err := parseResponse(raw, "DirectoryRes", version, verifier, testMode)
	if err != nil {
		return nil, err
	}
	return &DirectoryResponse{response: core}, nil
}

// Issuers returns the issuer list in document order. Order is significant
// to the merchant's payment page.
func (r *DirectoryResponse) Issuers() []Issuer {
	var issuers []Issuer
	for _, el := range r.root.FindElements("//Issuer") {
		issuer := Issuer{}
		if id := el.FindElement("./issuerID"); id != nil {
			issuer.ID = strings.TrimSpace(id.Text())
		}
		if name := el.FindElement("./issuerName"); name != nil {
			issuer.Name = strings.TrimSpace(name.Text())
		}
		issuers = append(issuers, issuer)
	}
	return issuers
}

// TransactionResponse carries the result of a transaction setup: where to
// redirect the consumer and the acquirer-assigned transaction ID.
type TransactionResponse struct {
	response
}

// ParseTransactionResponse constructs a TransactionResponse from received
// bytes.
func ParseTransactionResponse(raw []byte, version protocol.Version, verifier *security.Verifier, testMode bool) (*TransactionResponse, error) {
	core, err := parseResponse(raw, "AcquirerTrxRes", version, verifier, testMode)
	if err != nil {
		return nil, err
	}
	return &TransactionResponse{response: core}, nil
}

// ServiceURL is the issuer's authentication URL the consumer must be
// redirected to.
func (r *TransactionResponse) ServiceURL() string {
	return r.text("//Issuer/issuerAuthenticationURL")
}

// TransactionID is the acquirer-assigned transaction identifier, needed
// later to capture the status.
func (r *TransactionResponse) TransactionID() string {
	return r.text("//Transaction/transactionID")
}

// OrderID echoes the merchant's purchase ID.
func (r *TransactionResponse) OrderID() string {
	return r.text("//Transaction/purchaseID")
}

// StatusResponse carries the transaction outcome. Success requires three
// things at once: no error document, status text Success, and an
// authentic signature. A verification failure suppresses success; the
// channel fails closed.
type StatusResponse struct {
	response
	verified *bool
}

// ParseStatusResponse constructs a StatusResponse from received bytes.
func ParseStatusResponse(raw []byte, version protocol.Version, verifier *security.Verifier, testMode bool) (*StatusResponse, error) {
	core, err := parseResponse(raw, "AcquirerStatusRes", version, verifier, testMode)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{response: core}, nil
}

// Status maps the response status text case-insensitively.
func (r *StatusResponse) Status() Status {
	return ParseStatus(r.text("//Transaction/status"))
}

// TransactionID returns the transaction this status refers to.
func (r *StatusResponse) TransactionID() string {
	return r.text("//Transaction/transactionID")
}

// ConsumerName returns the paying consumer's name, when disclosed.
func (r *StatusResponse) ConsumerName() string {
	return r.text("//Transaction/consumerName")
}

// ConsumerAccountNumber returns the consumer's account number (legacy) or
// IBAN (current), whichever the response carries.
func (r *StatusResponse) ConsumerAccountNumber() string {
	if number := r.text("//Transaction/consumerAccountNumber"); number != "" {
		return number
	}
	return r.text("//Transaction/consumerIBAN")
}

// ConsumerCity returns the consumer's city, when disclosed.
func (r *StatusResponse) ConsumerCity() string {
	return r.text("//Transaction/consumerCity")
}

// Verified recomputes the response signature against the acquirer
// certificate. The result is cached for the response's lifetime. Without
// a configured acquirer certificate nothing can be trusted.
func (r *StatusResponse) Verified() bool {
	if r.verified != nil {
		return *r.verified
	}

	verified := r.verify()
	r.verified = &verified
	return verified
}

func (r *StatusResponse) verify() bool {
	if r.verifier == nil || r.errorRes {
		return false
	}

	if r.version.Mode == protocol.SignatureModeXMLDSig {
		return r.verifier.VerifyDocument(r.raw) == nil
	}

	// Legacy scheme: the acquirer signs the concatenation of exactly these
	// four fields, in this order.
	message := r.text("./"+r.version.TimestampTag) +
		r.text("//Transaction/transactionID") +
		r.text("//Transaction/status") +
		r.text("//Transaction/consumerAccountNumber")
	signatureValue := r.text("//Signature/signatureValue")
	if signatureValue == "" {
		return false
	}
	return r.verifier.VerifyTokenCode(message, signatureValue)
}

// Success requires an accepted request, a Success status and an authentic
// signature.
func (r *StatusResponse) Success() bool {
	return !r.errorRes && r.Status() == StatusSuccess && r.Verified()
}
