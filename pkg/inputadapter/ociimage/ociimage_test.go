package ociimage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecheckRequiresReferenceAndCacheDir(t *testing.T) {
	a := New("myvm", "", "", "")
	assert.Error(t, a.Precheck(context.Background()))

	a = New("myvm", "registry.example.com/vm:latest", "", "")
	assert.Error(t, a.Precheck(context.Background()))
}

func TestPrecheckCreatesCacheDir(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	a := New("myvm", "registry.example.com/vm:latest", cacheDir, t.TempDir())

	require.NoError(t, a.Precheck(context.Background()))

	info, err := os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFindImageFilePicksSingleCandidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "disk.qcow2"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0o644))

	path, err := findImageFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "disk.qcow2"), path)
}

func TestFindImageFileFailsWithNoCandidates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0o644))

	_, err := findImageFile(dir)
	assert.Error(t, err)
}

func TestFindImageFileFailsWithMultipleCandidates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.qcow2"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.raw"), []byte("data"), 0o644))

	_, err := findImageFile(dir)
	assert.Error(t, err)
}

func TestAsOptionsReflectsSignatureState(t *testing.T) {
	a := New("myvm", "registry.example.com/vm:latest", t.TempDir(), t.TempDir())
	assert.Contains(t, a.AsOptions(), "signed=false")

	a.Signature = &SignatureCheck{TrustPolicyName: "default"}
	assert.Contains(t, a.AsOptions(), "signed=true")
}
