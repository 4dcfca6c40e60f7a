package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Namespace is a logical artifact bucket under the store root.
type Namespace string

const (
	// NamespaceCertificates holds unsigned settlement certificates.
	NamespaceCertificates Namespace = "certificates"
	// NamespaceSignedCertificates holds their CMS-signed counterparts.
	NamespaceSignedCertificates Namespace = "certificates/signed"
)

const stagingDir = ".staging"

// FileStore persists artifacts as named byte blobs on the local filesystem.
// Writes land in a staging directory first and are renamed into their
// namespace, so a published name never refers to a partially written file.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	for _, dir := range []string{
		filepath.Join(root, string(NamespaceCertificates)),
		filepath.Join(root, string(NamespaceSignedCertificates)),
		filepath.Join(root, stagingDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
		}
	}
	return &FileStore{root: root}, nil
}

// Save stages content and publishes it under ns as name.
func (s *FileStore) Save(ns Namespace, name string, content []byte) error {
	name = filepath.Base(name)

	tmp, err := os.CreateTemp(filepath.Join(s.root, stagingDir), name+".*")
	if err != nil {
		return fmt.Errorf("stage artifact %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact %s: %w", name, err)
	}

	if err := os.Rename(tmpName, s.Path(ns, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact %s: %w", name, err)
	}
	return nil
}

// Open returns a reader over the named artifact.
func (s *FileStore) Open(ns Namespace, name string) (io.ReadCloser, error) {
	return os.Open(s.Path(ns, name))
}

// Exists reports whether the named artifact has been published.
func (s *FileStore) Exists(ns Namespace, name string) bool {
	_, err := os.Stat(s.Path(ns, name))
	return err == nil
}

// Remove deletes the named artifact. Removing an absent artifact is not an
// error; compensation paths call this unconditionally.
func (s *FileStore) Remove(ns Namespace, name string) error {
	err := os.Remove(s.Path(ns, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact %s: %w", name, err)
	}
	return nil
}

// Path returns the filesystem path for the named artifact.
func (s *FileStore) Path(ns Namespace, name string) string {
	return filepath.Join(s.root, string(ns), filepath.Base(name))
}
