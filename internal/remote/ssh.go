package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/sydlexius/crate/internal/catalog"
)

// SSHConfig describes how to reach the media server host.
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyPath  string
	// KnownHosts is the known_hosts file used to verify the host key.
	// Empty means ~/.ssh/known_hosts.
	KnownHosts string
	// InsecureIgnoreHostKey skips host key verification.
	InsecureIgnoreHostKey bool
	Timeout               time.Duration
}

// SSHRunner runs commands over one SSH connection, one session per command.
type SSHRunner struct {
	client *ssh.Client
	logger *slog.Logger
}

// Dial connects to the host. Authentication tries the key file, then the
// password, then a running SSH agent.
func Dial(ctx context.Context, cfg SSHConfig, logger *slog.Logger) (*SSHRunner, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, catalog.Configurationf("ssh host and user are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}
	hostKey, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w: %w", addr, catalog.ErrUnavailable, err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         cfg.Timeout,
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w: %w", addr, catalog.ErrPermissionDenied, err)
	}

	logger = logger.With(slog.String("integration", "ssh"), slog.String("host", addr))
	logger.Debug("ssh connected", slog.String("user", cfg.User))
	return &SSHRunner{client: ssh.NewClient(c, chans, reqs), logger: logger}, nil
}

func authMethods(cfg SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.KeyPath != "" {
		keyPath, err := expandHome(cfg.KeyPath)
		if err != nil {
			return nil, err
		}
		pem, err := os.ReadFile(keyPath) //nolint:gosec // path from operator config
		if err != nil {
			return nil, catalog.Configurationf("reading ssh key %s: %v", keyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, catalog.Configurationf("parsing ssh key %s: %v", keyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	if len(methods) == 0 {
		return nil, catalog.Configurationf("no ssh key, password or agent available")
	}
	return methods, nil
}

func hostKeyCallback(cfg SSHConfig) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // explicit operator opt-in
	}
	file := cfg.KnownHosts
	if file == "" {
		file = "~/.ssh/known_hosts"
	}
	file, err := expandHome(file)
	if err != nil {
		return nil, err
	}
	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, catalog.Configurationf("loading known hosts %s: %v", file, err)
	}
	return cb, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", catalog.Configurationf("resolving home directory: %v", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Run executes cmd in a new session. A non-zero exit status is returned as
// an error along with the captured output. Cancelling ctx closes the session.
func (r *SSHRunner) Run(ctx context.Context, cmd string) (string, string, error) {
	sess, err := r.client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("opening ssh session: %w: %w", catalog.ErrUnavailable, err)
	}
	defer sess.Close() //nolint:errcheck

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- sess.Run(cmd) }()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		_ = sess.Close()
		return "", "", ctx.Err()
	case err := <-done:
		var exit *ssh.ExitError
		if errors.As(err, &exit) {
			r.logger.Debug("remote command failed", slog.Int("status", exit.ExitStatus()))
		}
		return stdout.String(), stderr.String(), err
	}
}

// Close closes the connection.
func (r *SSHRunner) Close() error {
	return r.client.Close()
}
