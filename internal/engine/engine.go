package engine

import (
	"context"
	"io"
	"strings"

	"github.com/docker/go-connections/nat"
)

// Engine is the set of container engine operations the rest of dockers relies on.
// Implementations must be safe for concurrent use.
type Engine interface {
	Create(ctx context.Context, cfg CreateConfig) (Created, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string, opts StopOptions) error
	Remove(ctx context.Context, id string, opts RemoveOptions) error
	RemoveImage(ctx context.Context, ref string, opts RemoveImageOptions) ([]ImageDeletion, error)
	List(ctx context.Context, opts ListOptions) ([]Container, error)
	Attach(ctx context.Context, id string, opts AttachOptions) (*Attachment, error)
	Stats(ctx context.Context, id string) (SampleStream, error)
	Logs(ctx context.Context, id string, opts LogOptions) (ChunkStream, error)
	Events(ctx context.Context, filters Filters) (EventStream, error)
}

// ContainerRef identifies one container.
type ContainerRef struct {
	ID   string
	Name string
}

// ShortID returns the first 12 characters of the container ID.
func (r ContainerRef) ShortID() string {
	return ShortID(r.ID)
}

// ShortID truncates an engine ID to the 12 characters users are used to seeing.
func ShortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// CleanName strips the leading "/" the engine puts in front of container names.
func CleanName(name string) string {
	return strings.TrimPrefix(name, "/")
}

// CreateConfig holds everything needed to create a container.
type CreateConfig struct {
	Name        string
	Image       string
	Cmd         []string
	NetworkMode string
	Binds       []string
	Exposed     nat.PortSet
	Published   nat.PortMap
	OpenStdin   bool
	TTY         bool
}

// Created is the result of creating a container.
type Created struct {
	ID       string
	Warnings []string
}

// StopOptions controls how a container is stopped.
type StopOptions struct {
	// Timeout in seconds before the engine kills the container. Nil uses the engine default.
	Timeout *int
	Signal  string
}

// RemoveOptions controls container removal.
type RemoveOptions struct {
	Force         bool
	RemoveVolumes bool
	RemoveLinks   bool
}

// RemoveImageOptions controls image removal.
type RemoveImageOptions struct {
	Force   bool
	NoPrune bool
}

// ImageDeletion is one untagged or deleted reference reported by an image removal.
type ImageDeletion struct {
	Untagged string
	Deleted  string
}

// Filters are key/value predicates understood by the engine (e.g. status=running).
type Filters map[string][]string

// Add appends a value for key.
func (f Filters) Add(key, value string) {
	f[key] = append(f[key], value)
}

// ListOptions controls container listing.
type ListOptions struct {
	All     bool
	Size    bool
	Filters Filters
}

// Container is a listed container.
type Container struct {
	Ref        ContainerRef
	Names      []string
	Image      string
	Command    string
	Created    int64
	State      string
	Status     string
	Ports      []PortSummary
	SizeRw     int64
	SizeRootFs int64
}

// Running reports whether the engine lists the container as running.
func (c Container) Running() bool {
	return c.State == "running"
}

// PortSummary is a published or exposed port as reported by a listing.
type PortSummary struct {
	IP          string
	PrivatePort uint16
	PublicPort  uint16
	Type        string
}

// AttachOptions controls which streams an attachment carries.
type AttachOptions struct {
	Stdin bool
}

// Attachment is a live connection to a container's I/O.
type Attachment struct {
	Output ChunkStream
	// Input is nil unless the attachment was opened with Stdin.
	Input io.WriteCloser
}

// Close releases both directions of the attachment.
func (a *Attachment) Close() error {
	var err error
	if a.Input != nil {
		err = a.Input.Close()
	}
	if cerr := a.Output.Close(); err == nil {
		err = cerr
	}
	return err
}

// StreamKind tags the channel a chunk of container I/O belongs to.
type StreamKind int

const (
	Stdout StreamKind = iota
	Stderr
	Stdin
	// Console is raw output from a container with a TTY, where stdout and stderr are merged.
	Console
)

func (k StreamKind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	case Stdin:
		return "stdin"
	case Console:
		return "console"
	default:
		return "unknown"
	}
}

// Chunk is one piece of container output.
type Chunk struct {
	Kind StreamKind
	Data []byte
}

// ChunkStream yields container output in arrival order.
type ChunkStream interface {
	// Next blocks for the next chunk. It returns io.EOF when the stream ends.
	Next() (Chunk, error)
	Close() error
}

// Snapshot is one metrics sample for one container.
type Snapshot struct {
	ID         string
	Name       string
	CPU        uint64
	Memory     *uint64
	NetworkRx  *uint64
	BlockRead  *uint64
	BlockWrite *uint64
}

// SampleStream yields metrics samples for one container.
type SampleStream interface {
	// Next blocks for the next sample. It returns io.EOF once the container stops reporting.
	Next() (Snapshot, error)
	Close() error
}

// Event is one engine event.
type Event struct {
	Time       int64
	Type       string
	Action     string
	ActorID    string
	Attributes map[string]string
}

// EventStream yields engine events until its context is cancelled.
type EventStream interface {
	Next() (Event, error)
	Close() error
}

// LogOptions controls which log lines are streamed.
type LogOptions struct {
	Follow     bool
	Tail       string
	Timestamps bool
}
