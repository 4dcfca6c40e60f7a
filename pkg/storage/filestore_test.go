package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newStore(t)

	err := store.Save(NamespaceCertificates, "cert.pdf", []byte("content"))
	require.NoError(t, err)

	reader, err := store.Open(NamespaceCertificates, "cert.pdf")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)
}

func TestNamespacesAreSeparate(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(NamespaceCertificates, "cert.pdf", []byte("unsigned")))
	require.NoError(t, store.Save(NamespaceSignedCertificates, "cert.pdf.p7m", []byte("signed")))

	assert.True(t, store.Exists(NamespaceCertificates, "cert.pdf"))
	assert.False(t, store.Exists(NamespaceCertificates, "cert.pdf.p7m"))
	assert.True(t, store.Exists(NamespaceSignedCertificates, "cert.pdf.p7m"))
}

func TestSaveOverwrites(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(NamespaceCertificates, "cert.pdf", []byte("first")))
	require.NoError(t, store.Save(NamespaceCertificates, "cert.pdf", []byte("second")))

	reader, err := store.Open(NamespaceCertificates, "cert.pdf")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), content)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(NamespaceCertificates, "cert.pdf", []byte("content")))
	assert.NoError(t, store.Remove(NamespaceCertificates, "cert.pdf"))
	assert.False(t, store.Exists(NamespaceCertificates, "cert.pdf"))

	assert.NoError(t, store.Remove(NamespaceCertificates, "cert.pdf"))
}

func TestPathStripsDirectoryComponents(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	require.NoError(t, err)

	path := store.Path(NamespaceCertificates, "../../etc/passwd")

	assert.Equal(t, filepath.Join(root, "certificates", "passwd"), path)
}

func TestSaveLeavesNoStagingResidue(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Save(NamespaceCertificates, "cert.pdf", []byte("content")))

	entries, err := os.ReadDir(filepath.Join(root, ".staging"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
