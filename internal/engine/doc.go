// Package engine defines the container engine capabilities used by dockers
// and implements them on the Docker Engine API.
//
// The package provides three main components:
//
// 1. Engine interface (engine.go)
//    - Create, start, stop and remove containers, remove images
//    - List containers with filters and sizes
//    - Attach, stats, logs and events as pull-style streams
//
// 2. Docker implementation (docker.go, helpers.go)
//    - Client from DOCKER_HOST or an explicit host, with API version negotiation
//    - Launch configuration built from binds, network mode and port tables
//    - Every failure wrapped in a *CallError
//
// 3. Streams (streams.go, stats.go)
//    - Multiplexed stdout/stderr frames split into tagged chunks
//    - TTY output passed through as Console chunks
//    - Stats documents decoded into Snapshots, with absent counters left nil
//
// Basic usage:
//
//	eng, err := engine.NewDocker("")
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	samples, err := eng.Stats(ctx, id)
//	if err != nil {
//	    return err
//	}
//	defer samples.Close()
//	for {
//	    snap, err := samples.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Errors match ErrEngineCallFailed, and ErrNotFound when the engine reports
// a missing container or image:
//
//	if errors.Is(err, engine.ErrNotFound) {
//	    ...
//	}
package engine
