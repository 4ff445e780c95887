package security

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/leifj/signedxml"
)

// CanonicalizeElement serializes a single element using Exclusive XML
// Canonicalization 1.0 without comments. The element's namespace context
// must be declared on the element itself or within the subtree.
func CanonicalizeElement(el *etree.Element) ([]byte, error) {
	if el == nil {
		return nil, fmt.Errorf("no element to canonicalize")
	}
	c14n := signedxml.ExclusiveCanonicalization{WithComments: false}
	canonical, err := c14n.ProcessElement(el, "")
	if err != nil {
		return nil, fmt.Errorf("canonicalizing %s: %w", el.Tag, err)
	}
	return []byte(canonical), nil
}

// CanonicalizeExcluding canonicalizes the whole document with every child
// element named excludeTag removed from the root. This produces the exact
// input for the enveloped-signature digest: the document minus its
// Signature subtree.
//
// The document is copied first; the caller's document is never mutated.
func CanonicalizeExcluding(doc *etree.Document, excludeTag string) ([]byte, error) {
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("no document to canonicalize")
	}

	work := doc.Copy()
	root := work.Root()
	for _, child := range root.ChildElements() {
		if child.Tag == excludeTag {
			root.RemoveChild(child)
		}
	}

	return CanonicalizeElement(root)
}

// ParseDocument parses raw bytes into a DOM. Malformed input is a fatal
// error, never silently repaired.
func ParseDocument(raw []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parsing XML: no root element")
	}
	return doc, nil
}
