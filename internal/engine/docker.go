package engine

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

var _ Engine = (*Docker)(nil)

// Docker implements Engine using the Docker Engine API.
type Docker struct {
	cli *client.Client
}

// NewDocker creates a Docker engine client from the environment.
// A non-empty host overrides DOCKER_HOST.
func NewDocker(host string) (*Docker, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Docker{cli: cli}, nil
}

// Close closes the underlying Docker client.
func (d *Docker) Close() error {
	return d.cli.Close()
}

// Create creates a container without starting it.
func (d *Docker) Create(ctx context.Context, cfg CreateConfig) (Created, error) {
	resp, err := d.cli.ContainerCreate(ctx, buildContainerConfig(cfg), buildHostConfig(cfg), nil, nil, cfg.Name)
	if err != nil {
		return Created{}, callErr("create container from", cfg.Image, err)
	}
	return Created{ID: resp.ID, Warnings: resp.Warnings}, nil
}

// Start starts a created or stopped container.
func (d *Docker) Start(ctx context.Context, id string) error {
	if err := d.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return callErr("start container", id, err)
	}
	return nil
}

// Stop stops a running container.
func (d *Docker) Stop(ctx context.Context, id string, opts StopOptions) error {
	err := d.cli.ContainerStop(ctx, id, container.StopOptions{
		Signal:  opts.Signal,
		Timeout: opts.Timeout,
	})
	if err != nil {
		return callErr("stop container", id, err)
	}
	return nil
}

// Remove removes a container.
func (d *Docker) Remove(ctx context.Context, id string, opts RemoveOptions) error {
	err := d.cli.ContainerRemove(ctx, id, container.RemoveOptions{
		Force:         opts.Force,
		RemoveVolumes: opts.RemoveVolumes,
		RemoveLinks:   opts.RemoveLinks,
	})
	if err != nil {
		return callErr("remove container", id, err)
	}
	return nil
}

// RemoveImage removes an image and reports what was untagged and deleted.
func (d *Docker) RemoveImage(ctx context.Context, ref string, opts RemoveImageOptions) ([]ImageDeletion, error) {
	resp, err := d.cli.ImageRemove(ctx, ref, image.RemoveOptions{
		Force:         opts.Force,
		PruneChildren: !opts.NoPrune,
	})
	if err != nil {
		return nil, callErr("remove image", ref, err)
	}

	deletions := make([]ImageDeletion, 0, len(resp))
	for _, r := range resp {
		deletions = append(deletions, ImageDeletion{Untagged: r.Untagged, Deleted: r.Deleted})
	}
	return deletions, nil
}

// List lists containers matching opts.
func (d *Docker) List(ctx context.Context, opts ListOptions) ([]Container, error) {
	summaries, err := d.cli.ContainerList(ctx, container.ListOptions{
		All:     opts.All,
		Size:    opts.Size,
		Filters: toFilterArgs(opts.Filters),
	})
	if err != nil {
		return nil, callErr("list containers", "", err)
	}

	containers := make([]Container, 0, len(summaries))
	for _, s := range summaries {
		c := Container{
			Names:      make([]string, 0, len(s.Names)),
			Image:      s.Image,
			Command:    s.Command,
			Created:    s.Created,
			State:      string(s.State),
			Status:     s.Status,
			SizeRw:     s.SizeRw,
			SizeRootFs: s.SizeRootFs,
		}
		for _, name := range s.Names {
			c.Names = append(c.Names, CleanName(name))
		}
		c.Ref = ContainerRef{ID: s.ID}
		if len(c.Names) > 0 {
			c.Ref.Name = c.Names[0]
		}
		for _, p := range s.Ports {
			c.Ports = append(c.Ports, PortSummary{
				IP:          p.IP,
				PrivatePort: p.PrivatePort,
				PublicPort:  p.PublicPort,
				Type:        p.Type,
			})
		}
		containers = append(containers, c)
	}
	return containers, nil
}

// Attach attaches to a container's stdout and stderr, and stdin when requested.
func (d *Docker) Attach(ctx context.Context, id string, opts AttachOptions) (*Attachment, error) {
	info, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, callErr("inspect container", id, err)
	}
	tty := info.Config != nil && info.Config.Tty

	hijacked, err := d.cli.ContainerAttach(ctx, id, container.AttachOptions{
		Stream: true,
		Stdin:  opts.Stdin,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return nil, callErr("attach to container", id, err)
	}

	closer := closerFunc(func() error {
		hijacked.Close()
		return nil
	})
	att := &Attachment{Output: newChunkStream(hijacked.Reader, closer, tty)}
	if opts.Stdin {
		att.Input = &hijackedInput{conn: hijacked.Conn, closeWrite: hijacked.CloseWrite}
	}
	return att, nil
}

// Stats opens a continuous metrics stream for a container.
func (d *Docker) Stats(ctx context.Context, id string) (SampleStream, error) {
	resp, err := d.cli.ContainerStats(ctx, id, true)
	if err != nil {
		return nil, callErr("stream stats for", id, err)
	}
	return newSampleStream(resp.Body), nil
}

// Logs opens a log stream for a container.
func (d *Docker) Logs(ctx context.Context, id string, opts LogOptions) (ChunkStream, error) {
	info, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, callErr("inspect container", id, err)
	}
	tty := info.Config != nil && info.Config.Tty

	rc, err := d.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     opts.Follow,
		Tail:       opts.Tail,
		Timestamps: opts.Timestamps,
	})
	if err != nil {
		return nil, callErr("stream logs for", id, err)
	}
	return newChunkStream(rc, rc, tty), nil
}

// Events opens the engine event stream. The stream ends when Close is called.
func (d *Docker) Events(ctx context.Context, f Filters) (EventStream, error) {
	ctx, cancel := context.WithCancel(ctx)
	msgs, errs := d.cli.Events(ctx, events.ListOptions{Filters: toFilterArgs(f)})
	return &eventStream{ctx: ctx, msgs: msgs, errs: errs, cancel: cancel}, nil
}

func toFilterArgs(kv Filters) filters.Args {
	f := filters.NewArgs()
	for k, values := range kv {
		for _, v := range values {
			f.Add(k, v)
		}
	}
	return f
}

func callErr(op, target string, err error) error {
	return &CallError{Op: op, Target: target, NotFound: errdefs.IsNotFound(err), Err: err}
}
