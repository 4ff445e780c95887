package security

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestDocument(t *testing.T, raw string) *etree.Document {
	t.Helper()

	doc, err := ParseDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestCanonicalizeElement_AttributeOrdering(t *testing.T) {
	doc := parseTestDocument(t, `<root b="2" a="1"/>`)

	canonical, err := CanonicalizeElement(doc.Root())
	require.NoError(t, err)

	assert.Equal(t, `<root a="1" b="2"></root>`, string(canonical))
}

func TestCanonicalizeElement_Deterministic(t *testing.T) {
	doc := parseTestDocument(t, `<DirectoryReq xmlns="http://www.idealdesk.com/ideal/messages/mer-acq/3.3.1" version="3.3.1"><createDateTimestamp>2026-08-24T12:00:00.000Z</createDateTimestamp></DirectoryReq>`)

	first, err := CanonicalizeElement(doc.Root())
	require.NoError(t, err)
	second, err := CanonicalizeElement(doc.Root())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "createDateTimestamp")
}

func TestCanonicalizeElement_NilElement(t *testing.T) {
	_, err := CanonicalizeElement(nil)
	assert.Error(t, err)
}

func TestCanonicalizeExcluding_RemovesSignatureSubtree(t *testing.T) {
	doc := parseTestDocument(t, `<AcquirerStatusReq><createDateTimestamp>2026-08-24T12:00:00.000Z</createDateTimestamp><Signature><SignatureValue>abc</SignatureValue></Signature></AcquirerStatusReq>`)

	canonical, err := CanonicalizeExcluding(doc, "Signature")
	require.NoError(t, err)

	assert.NotContains(t, string(canonical), "Signature")
	assert.Contains(t, string(canonical), "createDateTimestamp")

	// The caller's document keeps its Signature subtree.
	assert.NotNil(t, doc.Root().FindElement("./Signature"))
}

func TestCanonicalizeExcluding_NoSignaturePresent(t *testing.T) {
	doc := parseTestDocument(t, `<AcquirerStatusReq><Transaction><transactionID>1</transactionID></Transaction></AcquirerStatusReq>`)

	withoutExclusion, err := CanonicalizeElement(doc.Root())
	require.NoError(t, err)
	excluded, err := CanonicalizeExcluding(doc, "Signature")
	require.NoError(t, err)

	assert.Equal(t, withoutExclusion, excluded)
}

func TestParseDocument_MalformedXML(t *testing.T) {
	_, err := ParseDocument([]byte("<broken"))
	assert.Error(t, err)

	_, err = ParseDocument([]byte(""))
	assert.Error(t, err)
}
