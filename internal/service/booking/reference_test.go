package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReference(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := newReference()
		assert.Len(t, ref, 14)
		assert.Equal(t, "KW", ref[:2])
		for _, r := range ref[2:10] {
			assert.Contains(t, "0123456789", string(r))
		}
		for _, r := range ref[10:] {
			assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(r))
		}
		seen[ref] = true
	}
	// timestamp digits are shared within a run, the random suffix should not be
	assert.Greater(t, len(seen), 1)
}

func TestNewConfirmationCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := newConfirmationCode()
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(r))
		}
	}
}
