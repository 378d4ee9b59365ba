package cache

import (
	"path/filepath"
	"testing"

	"github.com/ExtropyIO/Fuzzhead/compilation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestArtifactCacheRoundTrip ensures artifacts stored under a digest read back with their bytecode and a usable
// re-parsed ABI.
func TestArtifactCacheRoundTrip(t *testing.T) {
	artifactCache, err := Open(filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	defer artifactCache.Close()

	abiJSON := `[{"type":"function","name":"ping","inputs":[],"outputs":[],"stateMutability":"nonpayable"}]`
	parsedAbi, rawAbi, err := types.ParseABIFromInterface(abiJSON)
	require.NoError(t, err)

	source := []byte("contract Vault {}")
	digest := Digest(source, "Vault")
	contract := &types.CompiledContract{
		Name:          "Vault",
		SourcePath:    "Vault.sol",
		InitBytecode:  []byte{0x60, 0x80},
		Abi:           *parsedAbi,
		AbiDefinition: rawAbi,
	}
	require.NoError(t, artifactCache.Put(digest, contract))

	restored, hit, err := artifactCache.Get(digest)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "Vault", restored.Name)
	assert.Equal(t, []byte{0x60, 0x80}, restored.InitBytecode)
	_, ok := restored.Abi.Methods["ping"]
	assert.True(t, ok)
}

// TestArtifactCacheMiss ensures unknown digests report a miss without error.
func TestArtifactCacheMiss(t *testing.T) {
	artifactCache, err := Open(filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	defer artifactCache.Close()

	_, hit, err := artifactCache.Get(Digest([]byte("unknown"), "Ghost"))
	require.NoError(t, err)
	assert.False(t, hit)
}

// TestDigestSensitivity ensures the digest distinguishes both source content and contract name.
func TestDigestSensitivity(t *testing.T) {
	source := []byte("contract A {}")
	assert.Equal(t, Digest(source, "A"), Digest(source, "A"))
	assert.NotEqual(t, Digest(source, "A"), Digest(source, "B"))
	assert.NotEqual(t, Digest(source, "A"), Digest([]byte("contract B {}"), "A"))
}
