package postgres

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

const referenceSuffixLen = 6

// ReferenceGenerator builds batch reference codes of the form
// PREFIX-YYYYMMDD-XXXXXX, where the suffix is taken from ULID entropy.
type ReferenceGenerator struct {
	prefix string
}

// NewReferenceGenerator creates a ReferenceGenerator. An empty prefix
// falls back to "PAY".
func NewReferenceGenerator(prefix string) *ReferenceGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "PAY"
	}
	return &ReferenceGenerator{prefix: prefix}
}

// Generate returns a reference code dated at the UTC day of at.
func (g *ReferenceGenerator) Generate(at time.Time) string {
	id := ulid.Make().String()
	// The last characters of a ULID are random; the leading ten encode time.
	suffix := id[len(id)-referenceSuffixLen:]
	return g.prefix + "-" + at.UTC().Format("20060102") + "-" + suffix
}
