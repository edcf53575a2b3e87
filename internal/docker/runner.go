package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// BuildSpec describes one containerized build run.
type BuildSpec struct {
	// Image is the container image the build runs in.
	Image string

	// Command is the build command and its arguments.
	Command []string

	// ProjectDir is the absolute host path of the project, bind-mounted
	// at Workdir.
	ProjectDir string

	// Workdir is the in-container mount point and working directory.
	Workdir string

	// Env is the environment injected into the build process, in
	// "NAME=value" form (typically ClientEnv.Environ()).
	Env []string

	// Mode is the mode the environment was resolved for, recorded in the
	// container labels.
	Mode model.Mode

	// Pull forces an image pull before the run even if the image exists
	// locally.
	Pull bool
}

// RunBuild creates a container from spec, streams its output to stdout
// and stderr, waits for it to finish, and removes it. The container's
// exit status is returned; a non-zero status is not an error here — the
// CLI layer decides how to report it.
func RunBuild(ctx context.Context, cli *Client, spec BuildSpec) (int, error) {
	if spec.Pull {
		if err := pullImage(ctx, cli, spec.Image); err != nil {
			return -1, err
		}
	}

	resp, err := cli.inner.ContainerCreate(ctx,
		&container.Config{
			Image:      spec.Image,
			Cmd:        spec.Command,
			WorkingDir: spec.Workdir,
			Env:        spec.Env,
			Labels:     BuildLabels(spec.ProjectDir, spec.Mode, time.Now()),
		},
		&container.HostConfig{
			Binds: []string{spec.ProjectDir + ":" + spec.Workdir},
		},
		nil, nil, "")
	if err != nil {
		// A missing local image surfaces here; retry once with a pull
		// unless the caller already requested one.
		if !spec.Pull {
			if pullErr := pullImage(ctx, cli, spec.Image); pullErr == nil {
				retry := spec
				retry.Pull = true
				return RunBuild(ctx, cli, retry)
			}
		}
		return -1, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create build container from image %q", spec.Image),
			err,
		)
	}
	containerID := resp.ID

	// Remove the container regardless of how the run ends. Force handles
	// the ctx-cancelled case where the container is still running.
	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = cli.inner.ContainerRemove(removeCtx, containerID, container.RemoveOptions{Force: true})
	}()

	if err := cli.inner.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return -1, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start build container %q", containerID),
			err,
		)
	}

	// Stream the build output while the container runs. The Docker
	// multiplexed stream is demuxed back into stdout and stderr.
	logs, err := cli.inner.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return -1, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to attach to build container logs",
			err,
		)
	}
	defer func() { _ = logs.Close() }()

	copyDone := make(chan error, 1)
	go func() {
		_, copyErr := stdcopy.StdCopy(os.Stdout, os.Stderr, logs)
		copyDone <- copyErr
	}()

	statusCh, errCh := cli.inner.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return -1, model.WrapCLIError(model.ExitDockerNotRunning, "failed waiting for build container", err)
	case status := <-statusCh:
		// Drain the log stream before returning so trailing output is
		// not cut off.
		<-copyDone
		if status.Error != nil {
			return -1, model.NewCLIError(
				model.ExitDockerNotRunning,
				fmt.Sprintf("build container error: %s", status.Error.Message),
			)
		}
		return int(status.StatusCode), nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// pullImage pulls the image and discards the progress stream. The stream
// must be read to completion or the pull is aborted.
func pullImage(ctx context.Context, cli *Client, ref string) error {
	rc, err := cli.inner.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to pull image %q", ref),
			err,
		)
	}
	defer func() { _ = rc.Close() }()

	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("failed reading pull progress for %q: %w", ref, err)
	}
	return nil
}
