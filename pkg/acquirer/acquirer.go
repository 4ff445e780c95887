// Package acquirer maps the documented acquirer names to their iDEAL
// endpoints.
//
// Every acquirer exposes a live and a test environment. Most use a single
// URL for all three operations; the legacy ABN AMRO platform uses one URL
// per operation. The legacy whitespace-stripping rule also differs per
// acquirer, so it travels with the endpoint entry.
package acquirer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Fingertips/Ideal/pkg/protocol"
)

// ErrUnknownAcquirer is returned when a configured acquirer name is not in
// the directory.
var ErrUnknownAcquirer = errors.New("unknown acquirer")

// Acquirer is one named entry of the endpoint directory. Entries are
// read-only; selection happens once at configuration time.
type Acquirer struct {
	Name       string
	Whitespace protocol.WhitespacePolicy

	live map[protocol.Kind]string
	test map[protocol.Kind]string
}

// URL returns the endpoint for a request kind in the given environment.
func (a Acquirer) URL(kind protocol.Kind, testMode bool) string {
	if testMode {
		return a.test[kind]
	}
	return a.live[kind]
}

func uniform(live, test string) (map[protocol.Kind]string, map[protocol.Kind]string) {
	kinds := []protocol.Kind{protocol.KindDirectory, protocol.KindTransaction, protocol.KindStatus}
	liveURLs := make(map[protocol.Kind]string, len(kinds))
	testURLs := make(map[protocol.Kind]string, len(kinds))
	for _, k := range kinds {
		liveURLs[k] = live
		testURLs[k] = test
	}
	return liveURLs, testURLs
}

var directory = func() map[string]Acquirer {
	entries := map[string]Acquirer{}

	add := func(a Acquirer) { entries[a.Name] = a }

	ingLive, ingTest := uniform(
		"https://ideal.secure-ing.com/ideal/iDeal",
		"https://idealtest.secure-ing.com/ideal/iDeal",
	)
	add(Acquirer{Name: "ing", live: ingLive, test: ingTest})

	raboLive, raboTest := uniform(
		"https://ideal.rabobank.nl/ideal/iDeal",
		"https://idealtest.rabobank.nl/ideal/iDeal",
	)
	add(Acquirer{Name: "rabobank", live: raboLive, test: raboTest})

	abnLive, abnTest := uniform(
		"https://abnamro.ideal-payment.de/ideal/iDeal",
		"https://abnamro-test.ideal-payment.de/ideal/iDeal",
	)
	add(Acquirer{Name: "abnamro", live: abnLive, test: abnTest})

	// The pre-migration ABN AMRO platform: one URL per operation, and a
	// whitespace rule that strips only control characters from the token
	// message.
	add(Acquirer{
		Name:       "abnamro-legacy",
		Whitespace: protocol.StripControlWhitespace,
		live: map[protocol.Kind]string{
			protocol.KindDirectory:   "https://idealm.abnamro.nl/nl/issuerInformation/getIssuerInformation.xml",
			protocol.KindTransaction: "https://idealm.abnamro.nl/nl/acquirerTrxRegistration/getAcquirerTrxRegistration.xml",
			protocol.KindStatus:      "https://idealm.abnamro.nl/nl/acquirerStatusInquiry/getAcquirerStatusInquiry.xml",
		},
		test: map[protocol.Kind]string{
			protocol.KindDirectory:   "https://itt.idealm.abnamro.nl/nl/issuerInformation/getIssuerInformation.xml",
			protocol.KindTransaction: "https://itt.idealm.abnamro.nl/nl/acquirerTrxRegistration/getAcquirerTrxRegistration.xml",
			protocol.KindStatus:      "https://itt.idealm.abnamro.nl/nl/acquirerStatusInquiry/getAcquirerStatusInquiry.xml",
		},
	})

	return entries
}()

// Lookup resolves an acquirer by name, case-insensitively. An unknown name
// is a configuration error.
func Lookup(name string) (Acquirer, error) {
	a, ok := directory[strings.ToLower(name)]
	if !ok {
		return Acquirer{}, fmt.Errorf("%w: %q", ErrUnknownAcquirer, name)
	}
	return a, nil
}

// Names returns the known acquirer names, sorted.
func Names() []string {
	names := make([]string, 0, len(directory))
	for name := range directory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
