package e2etest

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Jupiter drops mints that are not 32 byte keys, so a bad fixture
// silently removes JUP from every merged list
func TestFixtureMintsAreSolanaKeys(t *testing.T) {
	for _, mint := range []string{MintSOL, MintBONK, MintJUP} {
		decoded, err := base58.Decode(mint)
		require.NoError(t, err, mint)
		assert.Len(t, decoded, 32, mint)
	}
}
