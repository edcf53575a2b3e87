// Package docker runs project build commands inside containers with the
// resolved client environment injected.
//
// It wraps the Docker Engine SDK client, handling socket auto-detection
// across platforms and labeling every container it creates with appenv.*
// labels so builds are identifiable in `docker ps`.
package docker

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// defaultPingTimeout bounds how long we wait for the daemon during Ping.
// Docker Desktop on macOS can be slow to answer the first request.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client. Host selection priority:
//
//  1. hostOverride (the APPENV_DOCKER_HOST setting), if non-empty
//  2. the DOCKER_HOST environment variable
//  3. platform-default socket paths
//
// Returns a model.CLIError with ExitDockerNotRunning when no socket is
// found or the client cannot be created.
func NewClient(hostOverride string) (*Client, error) {
	if hostOverride != "" {
		return newClientWithHost(hostOverride)
	}
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning, "Docker socket not found", err)
	}
	return newClientWithHost(host)
}

// newClientWithHost creates a Docker client for a specific connection
// string. API version negotiation keeps us compatible with whatever
// daemon version is installed.
func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host),
			err,
		)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost probes the known socket locations for the current
// platform and returns the first that exists. Existence is checked with
// os.Stat rather than a dial: it is fast, and Ping handles actual
// connectivity.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{"/var/run/docker.sock"})

	case "darwin":
		paths := []string{"/var/run/docker.sock"}
		if homeDir, err := os.UserHomeDir(); err == nil {
			// Newer Docker Desktop versions place the socket under the
			// user home instead of symlinking /var/run/docker.sock.
			paths = append(paths, homeDir+"/.docker/run/docker.sock")
		}
		return detectUnixSocket(paths)

	case "windows":
		return "npipe:////./pipe/docker_engine", nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the Docker host URI for the first socket path
// that exists, checking in the given order.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies the Docker daemon is reachable and responsive.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			"Docker daemon is not responding — is Docker running?",
			err,
		)
	}
	return nil
}

// Close releases resources held by the client. Safe to call twice.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
