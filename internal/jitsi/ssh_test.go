package jitsi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGetCreateSSHKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dev")

	pub, err := GetCreateSSHKey(dir, "meet")
	require.NoError(t, err)
	key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(pub))
	require.NoError(t, err)
	assert.Equal(t, ssh.KeyAlgoED25519, key.Type())

	priv, err := os.ReadFile(filepath.Join(dir, "meet"))
	require.NoError(t, err)
	signer, err := ssh.ParsePrivateKey(priv)
	require.NoError(t, err)
	assert.Equal(t, key.Marshal(), signer.PublicKey().Marshal())

	info, err := os.Stat(filepath.Join(dir, "meet"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	again, err := GetCreateSSHKey(dir, "meet")
	require.NoError(t, err)
	assert.Equal(t, pub, again, "existing key is reused")
}
