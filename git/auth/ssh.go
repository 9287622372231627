package auth

import (
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// DefaultSSHUser is the user most git hosts expect.
const DefaultSSHUser = "git"

// SSH supplies key or agent credentials to ssh remotes.
type SSH struct {
	keyPath    string
	key        []byte
	passphrase string
	agent      bool

	user            string
	hostKeyCallback gossh.HostKeyCallback
	allowedHosts    []string
}

// NewSSHKeyFile uses the private key stored at path.
func NewSSHKeyFile(path, passphrase string) *SSH {
	return &SSH{keyPath: path, passphrase: passphrase, user: DefaultSSHUser}
}

// NewSSHKey uses an in-memory PEM encoded private key.
func NewSSHKey(pem []byte, passphrase string) *SSH {
	return &SSH{key: pem, passphrase: passphrase, user: DefaultSSHUser}
}

// NewSSHAgent uses the keys held by the running ssh-agent.
func NewSSHAgent() *SSH {
	return &SSH{agent: true, user: DefaultSSHUser}
}

// WithUser overrides the ssh user.
func (p *SSH) WithUser(user string) *SSH {
	p.user = user
	return p
}

// WithHostKeyCallback sets host key verification.
func (p *SSH) WithHostKeyCallback(cb gossh.HostKeyCallback) *SSH {
	p.hostKeyCallback = cb
	return p
}

// WithKnownHosts verifies host keys against the given known_hosts files, or
// the default locations when none are given.
func (p *SSH) WithKnownHosts(files ...string) (*SSH, error) {
	cb, err := ssh.NewKnownHostsCallback(files...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to load known hosts")
	}
	p.hostKeyCallback = cb
	return p, nil
}

// WithAllowedHosts restricts the provider to hosts matching patterns.
func (p *SSH) WithAllowedHosts(patterns ...string) *SSH {
	p.allowedHosts = patterns
	return p
}

// Method returns ssh credentials for ssh remotes on an allowed host.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *SSH) Method(remoteURL string) (transport.AuthMethod, error) {
	ep, err := endpoint(remoteURL)
	if err != nil {
		return nil, err
	}
	if ep.Protocol != "ssh" {
		return nil, errors.Newf(errors.CodeInvalidInput, "ssh provider cannot serve %s remotes", ep.Protocol)
	}
	if !hostAllowed(ep.Host, p.allowedHosts) {
		return nil, nil
	}

	user := p.user
	if ep.User != "" {
		user = ep.User
	}

	switch {
	case p.agent:
		auth, err := ssh.NewSSHAgentAuth(user)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnauthorized, "failed to reach ssh agent")
		}
		if p.hostKeyCallback != nil {
			auth.HostKeyCallback = p.hostKeyCallback
		}
		return auth, nil
	case p.keyPath != "":
		if _, err := os.Stat(p.keyPath); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "ssh private key not readable")
		}
		auth, err := ssh.NewPublicKeysFromFile(user, p.keyPath, p.passphrase)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnauthorized, "failed to load ssh private key")
		}
		if p.hostKeyCallback != nil {
			auth.HostKeyCallback = p.hostKeyCallback
		}
		return auth, nil
	case len(p.key) > 0:
		auth, err := ssh.NewPublicKeys(user, p.key, p.passphrase)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnauthorized, "failed to parse ssh private key")
		}
		if p.hostKeyCallback != nil {
			auth.HostKeyCallback = p.hostKeyCallback
		}
		return auth, nil
	default:
		return nil, errors.New(errors.CodeInvalidConfig, "no ssh credentials configured")
	}
}
