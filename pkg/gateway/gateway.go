// Package gateway exposes the three iDEAL operations: issuer directory
// lookup, transaction setup, and transaction status capture.
//
// A Gateway owns one merchant identity, one acquirer selection and one
// protocol generation, fixed at construction. Configuration is
// set-once-at-startup: concurrent requests may share a Gateway read-only,
// but reconfiguring while requests are in flight is caller responsibility
// to serialize.
package gateway

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fingertips/Ideal/pkg/acquirer"
	"github.com/Fingertips/Ideal/pkg/message"
	"github.com/Fingertips/Ideal/pkg/protocol"
	"github.com/Fingertips/Ideal/pkg/security"
	"github.com/Fingertips/Ideal/pkg/transport"
)

// MerchantIDLength is the fixed width of a merchant ID on the wire.
const MerchantIDLength = 9

// Configuration errors
var (
	ErrInvalidMerchantID = errors.New("merchant ID must be at most nine digits")
)

// Transport posts a signed request body and returns the response body. It
// is satisfied by transport.HTTPSClient; tests substitute their own.
type Transport interface {
	Send(ctx context.Context, endpoint string, body []byte, contentType string) ([]byte, error)
}

// Merchant is the merchant identity: the contract ID issued by the
// acquirer, the sub ID (0 unless the contract says otherwise), and the
// RSA key pair registered with the acquirer.
type Merchant struct {
	ID          string
	SubID       int
	PrivateKey  *rsa.PrivateKey
	Certificate *x509.Certificate
}

// Config holds everything a Gateway needs. Merchant, Acquirer and Version
// are required; AcquirerCertificate is needed to verify status responses;
// Transport and Logger have working defaults.
type Config struct {
	Merchant            Merchant
	Acquirer            acquirer.Acquirer
	Version             protocol.Version
	AcquirerCertificate *x509.Certificate
	TestMode            bool
	Transport           Transport
	Logger              *slog.Logger
}

// Gateway orchestrates building, signing, sending and verifying for the
// three operations.
type Gateway struct {
	merchant  Merchant
	acquirer  acquirer.Acquirer
	version   protocol.Version
	testMode  bool
	builder   *message.Builder
	signer    *security.Signer
	verifier  *security.Verifier
	transport Transport
	logger    *slog.Logger
}

// New creates a Gateway. Missing or malformed key material is a
// configuration error, raised here and never at request time.
func New(cfg Config) (*Gateway, error) {
	if cfg.Merchant.PrivateKey == nil {
		return nil, security.ErrMissingPrivateKey
	}
	if cfg.Merchant.Certificate == nil {
		return nil, security.ErrMissingCertificate
	}

	merchantID, err := NormalizeMerchantID(cfg.Merchant.ID)
	if err != nil {
		return nil, err
	}
	cfg.Merchant.ID = merchantID

	g := &Gateway{
		merchant:  cfg.Merchant,
		acquirer:  cfg.Acquirer,
		version:   cfg.Version,
		testMode:  cfg.TestMode,
		builder:   message.NewBuilder(cfg.Version, merchantID, cfg.Merchant.SubID),
		transport: cfg.Transport,
		logger:    cfg.Logger,
	}

	if cfg.Version.Mode == protocol.SignatureModeXMLDSig {
		signer, err := security.NewSigner(cfg.Merchant.PrivateKey, cfg.Merchant.Certificate)
		if err != nil {
			return nil, err
		}
		g.signer = signer
	}

	if cfg.AcquirerCertificate != nil {
		verifier, err := security.NewVerifier(cfg.AcquirerCertificate)
		if err != nil {
			return nil, err
		}
		g.verifier = verifier
	}

	if g.transport == nil {
		httpsConfig := transport.DefaultHTTPSConfig()
		httpsConfig.Certificates = []tls.Certificate{
			transport.ClientCertificate(cfg.Merchant.Certificate, cfg.Merchant.PrivateKey),
		}
		g.transport = transport.NewHTTPSClient(httpsConfig)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g, nil
}

// NormalizeMerchantID left-pads a merchant ID with zeros to its fixed
// nine-digit width.
func NormalizeMerchantID(id string) (string, error) {
	if id == "" || len(id) > MerchantIDLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidMerchantID, id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidMerchantID, id)
		}
	}
	return strings.Repeat("0", MerchantIDLength-len(id)) + id, nil
}

// Issuers fetches the issuer directory: the list of consumer banks the
// merchant can offer on its payment page.
func (g *Gateway) Issuers(ctx context.Context) (*message.DirectoryResponse, error) {
	req, err := g.builder.DirectoryRequest(time.Now())
	if err != nil {
		return nil, err
	}

	raw, err := g.roundTrip(ctx, protocol.KindDirectory, req)
	if err != nil {
		return nil, err
	}

	return message.ParseDirectoryResponse(raw, g.version, g.verifier, g.testMode)
}

// SetupPurchase registers a transaction with the acquirer. The amount is
// in decimal currency units (euros); the response carries the issuer URL
// to redirect the consumer to and the transaction ID to capture later.
func (g *Gateway) SetupPurchase(ctx context.Context, amount decimal.Decimal, opts message.TransactionOptions) (*message.TransactionResponse, error) {
	req, err := g.builder.TransactionRequest(time.Now(), amount, opts)
	if err != nil {
		return nil, err
	}

	raw, err := g.roundTrip(ctx, protocol.KindTransaction, req)
	if err != nil {
		return nil, err
	}

	return message.ParseTransactionResponse(raw, g.version, g.verifier, g.testMode)
}

// Capture queries the outcome of a transaction. Only a verified response
// with status Success reports Success() == true.
func (g *Gateway) Capture(ctx context.Context, transactionID string) (*message.StatusResponse, error) {
	req, err := g.builder.StatusRequest(time.Now(), transactionID)
	if err != nil {
		return nil, err
	}

	raw, err := g.roundTrip(ctx, protocol.KindStatus, req)
	if err != nil {
		return nil, err
	}

	return message.ParseStatusResponse(raw, g.version, g.verifier, g.testMode)
}

// roundTrip signs the request, serializes it and posts it to the endpoint
// for its kind. A transport failure propagates as-is; no retries.
func (g *Gateway) roundTrip(ctx context.Context, kind protocol.Kind, req *message.Request) ([]byte, error) {
	if err := g.sign(req); err != nil {
		return nil, err
	}

	body, err := req.Serialize()
	if err != nil {
		return nil, err
	}

	endpoint := g.acquirer.URL(kind, g.testMode)
	requestID := uuid.NewString()

	g.logger.Debug("sending iDEAL request",
		"requestId", requestID,
		"kind", kind.String(),
		"acquirer", g.acquirer.Name,
		"endpoint", endpoint,
		"testMode", g.testMode)

	raw, err := g.transport.Send(ctx, endpoint, body, transport.ContentTypeXML)
	if err != nil {
		g.logger.Debug("iDEAL request failed",
			"requestId", requestID,
			"kind", kind.String(),
			"error", err)
		return nil, fmt.Errorf("%s request: %w", kind, err)
	}

	g.logger.Debug("received iDEAL response",
		"requestId", requestID,
		"kind", kind.String(),
		"bytes", len(raw))
	return raw, nil
}

func (g *Gateway) sign(req *message.Request) error {
	if g.version.Mode == protocol.SignatureModeToken {
		return req.SignToken(g.merchant.PrivateKey, g.merchant.Certificate, g.acquirer.Whitespace)
	}
	return req.SignXMLDSig(g.signer)
}
