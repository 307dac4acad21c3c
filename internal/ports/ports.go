package ports

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
)

// ErrInvalidPortSpec matches every parse failure.
var ErrInvalidPortSpec = errors.New("invalid port spec")

// SpecError reports the offending port spec string.
type SpecError struct {
	Spec   string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid port spec %q: %s", e.Spec, e.Reason)
}

func (e *SpecError) Is(target error) bool {
	return target == ErrInvalidPortSpec
}

// Binding is one host address a container port is published on.
// Empty fields mean the engine picks.
type Binding struct {
	HostIP   string
	HostPort string
}

// Spec maps container ports to the host bindings they are published on.
// A port with an empty list is exposed but not published.
type Spec map[nat.Port][]Binding

// Parse parses specs of the form containerPort, hostPort:containerPort or
// hostIP:hostPort:containerPort. The container port may carry a /tcp, /udp
// or /sctp suffix. Bindings for the same container port accumulate in order.
func Parse(specs []string) (Spec, error) {
	spec := make(Spec)
	for _, raw := range specs {
		port, binding, err := parseOne(raw)
		if err != nil {
			return nil, err
		}
		spec.add(port, binding)
	}
	return spec, nil
}

// Expose adds container ports that are exposed without being published.
func (s Spec) Expose(raw ...string) error {
	for _, r := range raw {
		port, binding, err := parseOne(r)
		if err != nil {
			return err
		}
		if binding != nil {
			return &SpecError{Spec: r, Reason: "exposed ports cannot have a host binding"}
		}
		s.add(port, nil)
	}
	return nil
}

func (s Spec) add(port nat.Port, binding *Binding) {
	bindings, ok := s[port]
	if !ok {
		bindings = []Binding{}
	}
	if binding != nil {
		bindings = append(bindings, *binding)
	}
	s[port] = bindings
}

func parseOne(raw string) (nat.Port, *Binding, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil, &SpecError{Spec: raw, Reason: "empty"}
	}

	fields := splitRight(s, 3)
	port, err := parseContainerPort(fields[len(fields)-1])
	if err != nil {
		return "", nil, &SpecError{Spec: raw, Reason: err.Error()}
	}

	switch len(fields) {
	case 1:
		return port, nil, nil
	case 2:
		if err := validateHostPort(fields[0]); err != nil {
			return "", nil, &SpecError{Spec: raw, Reason: err.Error()}
		}
		return port, &Binding{HostPort: fields[0]}, nil
	default:
		if err := validateHostIP(fields[0]); err != nil {
			return "", nil, &SpecError{Spec: raw, Reason: err.Error()}
		}
		if err := validateHostPort(fields[1]); err != nil {
			return "", nil, &SpecError{Spec: raw, Reason: err.Error()}
		}
		return port, &Binding{HostIP: fields[0], HostPort: fields[1]}, nil
	}
}

// splitRight splits s on ":" from the right into at most n fields.
// Any colons left over stay in the first field.
func splitRight(s string, n int) []string {
	var fields []string
	for len(fields) < n-1 {
		i := strings.LastIndex(s, ":")
		if i < 0 {
			break
		}
		fields = append([]string{s[i+1:]}, fields...)
		s = s[:i]
	}
	return append([]string{s}, fields...)
}

func parseContainerPort(raw string) (nat.Port, error) {
	if strings.Count(raw, "/") > 1 || strings.HasSuffix(raw, "/") {
		return "", fmt.Errorf("malformed container port %q", raw)
	}
	proto, port := nat.SplitProtoPort(raw)
	switch proto {
	case "tcp", "udp", "sctp":
	default:
		return "", fmt.Errorf("unsupported protocol %q", proto)
	}
	if _, err := parsePortNumber(port); err != nil {
		return "", fmt.Errorf("invalid container port: %w", err)
	}
	return nat.NewPort(proto, port)
}

func validateHostPort(raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := parsePortNumber(raw); err != nil {
		return fmt.Errorf("invalid host port: %w", err)
	}
	return nil
}

// validateHostIP accepts an empty address, an IPv4 or IPv6 literal, or a
// bracketed IPv6 literal. Leftover colons outside brackets mean the spec had
// more than three fields.
func validateHostIP(raw string) error {
	if raw == "" {
		return nil
	}
	ip := raw
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		ip = raw[1 : len(raw)-1]
	} else if strings.Contains(raw, ":") {
		return errors.New("too many fields")
	}
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid host IP %q", raw)
	}
	return nil
}

func parsePortNumber(raw string) (uint16, error) {
	n, err := strconv.ParseUint(raw, 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%q is not a port number", raw)
	}
	return uint16(n), nil
}

// Exposed returns every container port in the spec.
func (s Spec) Exposed() nat.PortSet {
	set := make(nat.PortSet, len(s))
	for port := range s {
		set[port] = struct{}{}
	}
	return set
}

// PortMap returns the published ports with their host bindings.
// Ports that are only exposed are left out.
func (s Spec) PortMap() nat.PortMap {
	m := make(nat.PortMap)
	for port, bindings := range s {
		if len(bindings) == 0 {
			continue
		}
		pb := make([]nat.PortBinding, 0, len(bindings))
		for _, b := range bindings {
			pb = append(pb, nat.PortBinding{HostIP: b.HostIP, HostPort: b.HostPort})
		}
		m[port] = pb
	}
	return m
}

// Strings renders the spec back into parseable strings, sorted by container port.
func (s Spec) Strings() []string {
	keys := make([]nat.Port, 0, len(s))
	for port := range s {
		keys = append(keys, port)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Int() != keys[j].Int() {
			return keys[i].Int() < keys[j].Int()
		}
		return keys[i].Proto() < keys[j].Proto()
	})

	var out []string
	for _, port := range keys {
		container := port.Port()
		if port.Proto() != "tcp" {
			container = string(port)
		}

		bindings := s[port]
		if len(bindings) == 0 {
			out = append(out, container)
			continue
		}
		for _, b := range bindings {
			if b.HostIP != "" {
				out = append(out, b.HostIP+":"+b.HostPort+":"+container)
			} else {
				out = append(out, b.HostPort+":"+container)
			}
		}
	}
	return out
}
