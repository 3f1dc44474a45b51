package xdg

import (
	"os"
	"os/user"
	"path/filepath"
)

// Paths holds XDG-compliant directory paths
type Paths struct {
	ConfigHome string
	DataHome   string
}

// NewPaths returns XDG-compliant directory paths
// If XDG environment variables are set, they are used; otherwise, defaults are applied
func NewPaths() (Paths, error) {
	homeDir, err := getHomeDir()
	if err != nil {
		return Paths{}, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	return Paths{
		ConfigHome: configHome,
		DataHome:   dataHome,
	}, nil
}

// getHomeDir returns the user's home directory
func getHomeDir() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", err
	}
	return currentUser.HomeDir, nil
}

// PolicyPath returns the path to the algorithm policy file
func (p Paths) PolicyPath() string {
	return filepath.Join(p.ConfigHome, "pgpainless", "policy.yaml")
}

// DataDir returns the directory holding stored key rings
func (p Paths) DataDir() string {
	return filepath.Join(p.DataHome, "pgpainless")
}

// EnsureDirs creates necessary directories with proper permissions (0700)
func (p Paths) EnsureDirs() error {
	dirs := []string{
		filepath.Join(p.ConfigHome, "pgpainless"),
		p.DataDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return nil
}
