// Package auth locates and checks the Gemini API key.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".roomedit"
	credentialFile = "credentials.gpg"
	passphraseFile = ".gpg-passphrase"
)

// ErrNoAPIKey is returned when no key source is available.
var ErrNoAPIKey = errors.New("API key not found: set GEMINI_API_KEY or store it in ~/.roomedit/credentials.gpg")

// GetAPIKey returns the Gemini API key. Sources, in order:
//  1. GEMINI_API_KEY
//  2. the GPG-encrypted file ~/.roomedit/credentials.gpg
func GetAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}
	key, err := getFromGPG()
	if err != nil {
		log.Debug().Err(err).Msg("No GPG credentials")
		return "", fmt.Errorf("%w (%v)", ErrNoAPIKey, err)
	}
	log.Debug().Msg("Using API key from GPG encrypted file")
	return key, nil
}

func getFromGPG() (string, error) {
	credPath, err := credentialPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(credPath); err != nil {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	args := []string{"--decrypt", "--quiet"}
	if pp, ok := passphrasePath(); ok {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", pp)
	}
	args = append(args, credPath)

	out, err := exec.Command("gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	key := strings.TrimSpace(string(out))
	if key == "" {
		return "", fmt.Errorf("GPG credentials file %s is empty", credPath)
	}
	return key, nil
}

func credentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}

// passphrasePath finds an owner-only passphrase file next to the credentials
// for non-interactive decryption.
func passphrasePath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	p := filepath.Join(home, credentialDir, passphraseFile)
	fi, err := os.Stat(p)
	if err != nil {
		return "", false
	}
	if fi.Mode().Perm()&0o077 != 0 {
		log.Warn().
			Str("passphrase_file", p).
			Str("permissions", fmt.Sprintf("%04o", fi.Mode().Perm())).
			Msg("Passphrase file has insecure permissions (should be 0600); skipping")
		return "", false
	}
	return p, true
}
