/*
Package ideal implements the merchant side of the Dutch iDEAL
online-banking payment protocol.

# Overview

iDEAL lets a merchant redirect a consumer to their own bank's payment
page and later confirm whether the payment succeeded. The exchange is
three signed XML round trips with the merchant's acquirer: an issuer
directory lookup, a transaction setup, and a transaction status capture.

Two protocol generations are supported:

  - v1.1.0 (legacy): requests authenticate with a token (SHA1 fingerprint
    of the merchant certificate) and a tokenCode (RSA-SHA1 signature over
    a whitespace-stripped concatenation of request fields).
  - v3.3.1 (current): requests carry an enveloped XML-DSig Signature with
    exclusive canonicalization, SHA-256 digests and RSA-SHA256.

# Package Structure

The library is organized into the following packages:

	github.com/Fingertips/Ideal/pkg/gateway   - The three merchant operations
	github.com/Fingertips/Ideal/pkg/message   - Request building and response parsing
	github.com/Fingertips/Ideal/pkg/security  - C14N, token signing, XML-DSig sign/verify
	github.com/Fingertips/Ideal/pkg/protocol  - Protocol generation strategy
	github.com/Fingertips/Ideal/pkg/acquirer  - Acquirer endpoint directory
	github.com/Fingertips/Ideal/pkg/transport - HTTPS POST with TLS client certificates

# Quick Start

To set up a purchase:

	import (
	    "github.com/shopspring/decimal"

	    "github.com/Fingertips/Ideal/pkg/gateway"
	    "github.com/Fingertips/Ideal/pkg/message"
	)

	g, err := gateway.LoadFromFile("ideal.yml")
	if err != nil {
	    // configuration problems surface before any request
	}

	response, err := g.SetupPurchase(ctx, decimal.NewFromFloat(49.95), message.TransactionOptions{
	    IssuerID:         "0001",
	    OrderID:          "iDEAL-order-1",
	    ExpirationPeriod: "PT10M",
	    ReturnURL:        "https://shop.example.com/return",
	    Description:      "A classic Dutch windmill",
	    EntranceCode:     "1234",
	})

	// redirect the consumer to response.ServiceURL(), then later:
	status, err := g.Capture(ctx, response.TransactionID())
	if status.Success() {
	    // the payment is confirmed and the response signature verified
	}

# Security Model

Every request is signed before it crosses the transport boundary, and
every status response is verified against the acquirer's certificate.
Verification failures are never errors: they collapse into
Success() == false, so an untrusted channel can never report a payment
as successful.
*/
package ideal
