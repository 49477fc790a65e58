package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Zero(t, Estimate(""))

	// ASCII: runes/2 dominates bytes/3
	assert.Equal(t, 15, Estimate(strings.Repeat("a", 30)))

	// Multibyte: bytes/3 dominates
	arabic := strings.Repeat("ع", 30) // 2 bytes per rune
	assert.Equal(t, 20, Estimate(arabic))

	assert.Greater(t, Estimate("a longer sentence about rental rates"), Estimate("short"))
}
