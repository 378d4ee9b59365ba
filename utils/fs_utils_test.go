package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileAndDirectoryExists ensures existence checks distinguish files from directories.
func TestFileAndDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("hello"), 0644))

	assert.True(t, FileExists(filePath))
	assert.False(t, FileExists(dir))
	assert.True(t, DirectoryExists(dir))
	assert.False(t, DirectoryExists(filePath))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}

// TestCopyFile ensures file copies preserve content and create missing parent directories.
func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(sourcePath, []byte("payload"), 0644))

	targetPath := filepath.Join(dir, "nested", "dst.txt")
	require.NoError(t, CopyFile(sourcePath, targetPath))

	copied, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), copied)
}

// TestGetFileNameWithoutExtension ensures stem extraction drops directories and the extension.
func TestGetFileNameWithoutExtension(t *testing.T) {
	assert.Equal(t, "Vault", GetFileNameWithoutExtension("/a/b/Vault.sol"))
	assert.Equal(t, "Vault", GetFileNameWithoutExtension("Vault.sol"))
	assert.Equal(t, "Vault", GetFileNameWithoutExtension("Vault"))
}

// TestFindFilesWithExtension ensures the recursive search matches extensions only.
func TestFindFilesWithExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.sol"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "B.sol"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "C.txt"), nil, 0644))

	found, err := FindFilesWithExtension(dir, ".sol")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

// TestTruncateString ensures truncation caps length and marks truncated output.
func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc...", TruncateString("abcdef", 3))
}
