package reservations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeGeneratorFormat(t *testing.T) {
	g := NewCodeGenerator("")
	g.now = func() time.Time { return time.UnixMilli(1718047800000) }

	code, err := g.Next()
	require.NoError(t, err)
	assert.Regexp(t, `^RSV-LX9DAUO0-[0-9A-Z]{4}$`, code)
	assert.Regexp(t, g.Pattern(), code)
}

func TestCodeGeneratorCustomPrefix(t *testing.T) {
	g := NewCodeGenerator(" tb ")
	code, err := g.Next()
	require.NoError(t, err)
	assert.Regexp(t, `^TB-[0-9A-Z]+-[0-9A-Z]{4}$`, code)
}

func TestCodeGeneratorVariesSuffix(t *testing.T) {
	g := NewCodeGenerator("RSV")
	g.now = func() time.Time { return time.UnixMilli(0) }

	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, err := g.Next()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 36^4 suffixes; 50 draws colliding down to a handful would mean no randomness.
	assert.Greater(t, len(seen), 40)
}
