package engine

import (
	"github.com/docker/docker/api/types/container"
)

// buildContainerConfig creates a container.Config from CreateConfig.
func buildContainerConfig(cfg CreateConfig) *container.Config {
	config := &container.Config{
		Image:        cfg.Image,
		Cmd:          cfg.Cmd,
		Tty:          cfg.TTY,
		OpenStdin:    cfg.OpenStdin,
		StdinOnce:    cfg.OpenStdin,
		AttachStdin:  cfg.OpenStdin,
		AttachStdout: true,
		AttachStderr: true,
	}

	if len(cfg.Exposed) > 0 {
		config.ExposedPorts = cfg.Exposed
	}

	return config
}

// buildHostConfig creates a container.HostConfig from CreateConfig.
func buildHostConfig(cfg CreateConfig) *container.HostConfig {
	hostConfig := &container.HostConfig{
		Binds: cfg.Binds,
	}

	if cfg.NetworkMode != "" {
		hostConfig.NetworkMode = container.NetworkMode(cfg.NetworkMode)
	}

	if len(cfg.Published) > 0 {
		hostConfig.PortBindings = cfg.Published
	}

	return hostConfig
}
