package testsupport

import (
	"embed"
	"testing"

	"github.com/goliatone/go-waflow/pkg/flow"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture names bundled with the package.
const (
	// Onboarding is a modern (inline action) three screen flow with a form per
	// screen, a dropdown, a photo picker and an unknown RichText component.
	Onboarding = "onboarding.json"
	// Legacy uses Button action_id addressing against a top-level actions
	// table and the `data_source` spelling.
	Legacy = "legacy.json"
)

// MustFixture returns the raw bytes of a bundled fixture.
func MustFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// MustDocument parses a bundled fixture.
func MustDocument(t testing.TB, name string) *flow.Document {
	t.Helper()

	doc, err := flow.Parse(MustFixture(t, name))
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	return doc
}

// MustParse parses inline JSON, failing the test on error.
func MustParse(t testing.TB, raw string) *flow.Document {
	t.Helper()

	doc, err := flow.ParseString(raw)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

