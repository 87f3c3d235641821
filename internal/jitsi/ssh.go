package jitsi

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// GetCreateSSHKey returns the authorized_keys line of the ed25519 key
// stored as keyDir/name, generating the key pair first if it is missing.
func GetCreateSSHKey(keyDir, name string) (string, error) {
	keyPath := filepath.Join(keyDir, name)
	pubBytes, err := os.ReadFile(keyPath + ".pub")
	if err == nil {
		return string(pubBytes), nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	ed25519Pub, ed25519Priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	sshPrivateKey, err := ssh.MarshalPrivateKey(ed25519Priv, name)
	if err != nil {
		return "", err
	}
	sshPubKey, err := ssh.NewPublicKey(ed25519Pub)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(keyDir, 0750); err != nil {
		return "", err
	}
	// private key first so a .pub never exists without its key
	keyFile, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	defer keyFile.Close()
	if err := pem.Encode(keyFile, sshPrivateKey); err != nil {
		return "", err
	}
	pubBytes = ssh.MarshalAuthorizedKey(sshPubKey)
	if err := os.WriteFile(keyPath+".pub", pubBytes, 0640); err != nil {
		return "", err
	}
	return string(pubBytes), nil
}
