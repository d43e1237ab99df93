package postgres

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestULIDGeneratorUnique(t *testing.T) {
	g := NewULIDGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.Generate()
		assert.Len(t, id, 26)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestReferenceGeneratorFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	pattern := regexp.MustCompile(`^PAY-20260314-[0-9A-HJKMNP-TV-Z]{6}$`)

	ref := NewReferenceGenerator("").Generate(at)
	assert.Regexp(t, pattern, ref)

	loot := NewReferenceGenerator(" loot ").Generate(at)
	assert.Regexp(t, regexp.MustCompile(`^LOOT-20260314-`), loot)
}
