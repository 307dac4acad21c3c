// Package ports parses port publishing specifications into engine port tables.
//
// A spec is "[[hostIP:]hostPort:]containerPort[/protocol]". The protocol is
// tcp, udp or sctp and defaults to tcp. IPv6 host addresses are written in
// brackets, e.g. "[::1]:8080:80". Every failure matches ErrInvalidPortSpec
// and carries the offending spec in a *SpecError.
package ports
