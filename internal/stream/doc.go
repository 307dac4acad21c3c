// Package stream relays bytes between a container's I/O and the controlling terminal.
package stream
