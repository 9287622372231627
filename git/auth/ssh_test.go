package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := gossh.MarshalPrivateKey(priv, "test@releasetrain")
	require.NoError(t, err)
	return pem.EncodeToMemory(block)
}

func TestSSH_Method_SchemeAndHosts(t *testing.T) {
	tests := []struct {
		name      string
		provider  *SSH
		remoteURL string
		wantNil   bool
		wantError bool
	}{
		{"https remote rejected", NewSSHAgent(), "https://github.com/a/b.git", true, true},
		{"host not allowed", NewSSHAgent().WithAllowedHosts("gitlab.com"), "git@github.com:a/b.git", true, false},
		{"no credentials", &SSH{user: DefaultSSHUser}, "ssh://git@github.com/a/b.git", true, true},
		{"missing key file", NewSSHKeyFile(filepath.Join(t.TempDir(), "missing"), ""), "git@github.com:a/b.git", true, true},
		{"broken key bytes", NewSSHKey([]byte("not a key"), ""), "git@github.com:a/b.git", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, err := tt.provider.Method(tt.remoteURL)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, method)
			}
		})
	}
}

func TestSSH_Method_KeyBytes(t *testing.T) {
	cb := gossh.InsecureIgnoreHostKey()
	p := NewSSHKey(testKey(t), "").WithUser("deploy").WithHostKeyCallback(cb)

	method, err := p.Method("ssh://github.com/a/b.git")
	require.NoError(t, err)

	keys, ok := method.(*ssh.PublicKeys)
	require.True(t, ok)
	assert.Equal(t, "deploy", keys.User)
	assert.NotNil(t, keys.HostKeyCallback)
}

func TestSSH_Method_KeyFileUsesURLUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, testKey(t), 0o600))

	method, err := NewSSHKeyFile(path, "").Method("git@github.com:a/b.git")
	require.NoError(t, err)
	keys, ok := method.(*ssh.PublicKeys)
	require.True(t, ok)
	assert.Equal(t, "git", keys.User)
}

func TestSSH_WithKnownHosts(t *testing.T) {
	_, err := NewSSHAgent().WithKnownHosts(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
}
