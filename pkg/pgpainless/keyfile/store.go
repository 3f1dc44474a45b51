// Package keyfile stores named key rings and their revocation certificates
// as armored files under a data directory. Writes go through a sidecar file
// lock and an atomic temp-file rename so concurrent invocations never observe
// a torn file.
package keyfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

const (
	keyExt        = ".asc"
	revocationExt = ".rev.asc"
)

var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ValidateName checks a ring name against the allowed character set.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return pgperrors.PreconditionError(fmt.Sprintf(
			"invalid key name %q: must start with a lowercase letter or digit and contain only lowercase letters, digits, dots, underscores and hyphens (max 64 characters)", name))
	}
	return nil
}

// Store keeps key rings under <root>/keys and revocation certificates under
// <root>/revocations.
type Store struct {
	root string
}

// Open prepares a store rooted at dir, creating its directories with owner-only
// permissions.
func Open(dir string) (*Store, error) {
	s := &Store{root: dir}
	for _, sub := range []string{s.keysDir(), s.revocationsDir()} {
		if err := os.MkdirAll(sub, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return s, nil
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) keysDir() string {
	return filepath.Join(s.root, "keys")
}

func (s *Store) revocationsDir() string {
	return filepath.Join(s.root, "revocations")
}

// KeyPath returns the file path a ring name maps to.
func (s *Store) KeyPath(name string) string {
	return filepath.Join(s.keysDir(), name+keyExt)
}

// RevocationPath returns the file path a ring's revocation certificate maps to.
func (s *Store) RevocationPath(name string) string {
	return filepath.Join(s.revocationsDir(), name+revocationExt)
}

// Exists reports whether a ring is stored under name.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.KeyPath(name))
	return err == nil
}

// Save writes secret key material under name. An existing ring with the same
// name is replaced.
func (s *Store) Save(name string, skm *cert.SecretKeyMaterial) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	armored, err := skm.Armor()
	if err != nil {
		return fmt.Errorf("failed to armor key ring: %w", err)
	}
	return s.writeLocked(s.KeyPath(name), []byte(armored))
}

// Load reads the secret key material stored under name.
func (s *Store) Load(name string) (*cert.SecretKeyMaterial, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := s.readLocked(s.KeyPath(name))
	if err != nil {
		return nil, err
	}
	skm, err := cert.ParseSecretKeyMaterial(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse key ring %q: %w", name, err)
	}
	return skm, nil
}

// LoadCertificate reads the ring stored under name and strips its secret
// parts.
func (s *Store) LoadCertificate(name string) (*cert.Certificate, error) {
	skm, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	return skm.Certificate(), nil
}

// SaveRevocation writes an armored revocation certificate for name.
func (s *Store) SaveRevocation(name string, armored string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return s.writeLocked(s.RevocationPath(name), []byte(armored))
}

// LoadRevocation reads the stored revocation certificate for name.
func (s *Store) LoadRevocation(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	data, err := s.readLocked(s.RevocationPath(name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Delete removes the ring stored under name. The revocation certificate, if
// any, is kept.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := s.KeyPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return pgperrors.NotFoundError(fmt.Sprintf("no key ring named %q", name))
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete key ring: %w", err)
	}
	_ = os.Remove(path + ".lock")
	return nil
}

// List returns the stored ring names in lexicographic order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.keysDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list key rings: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), keyExt)
		if !ok || ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// writeLocked writes data atomically: take the sidecar lock, write a temp
// file, fsync, rename over the target.
func (s *Store) writeLocked(path string, data []byte) error {
	unlock, err := s.lock(path, true)
	if err != nil {
		return err
	}
	defer unlock()

	tmpPath := path + ".tmp"
	tmpFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Store) readLocked(path string) ([]byte, error) {
	unlock, err := s.lock(path, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pgperrors.NotFoundError(fmt.Sprintf("no file at %s", path))
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// lock takes the sidecar lock guarding path and returns its release func.
func (s *Store) lock(path string, exclusive bool) (func(), error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := lockFile(f, exclusive); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	return func() {
		_ = unlockFile(f)
		_ = f.Close()
	}, nil
}
