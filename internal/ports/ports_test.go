package ports

import (
	"errors"
	"reflect"
	"testing"

	"github.com/docker/go-connections/nat"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  Spec
	}{
		{
			name:  "bare port",
			input: []string{"80"},
			want:  Spec{"80/tcp": {}},
		},
		{
			name:  "host port",
			input: []string{"443:8080"},
			want:  Spec{"8080/tcp": {{HostPort: "443"}}},
		},
		{
			name:  "host ip and port",
			input: []string{"127.0.0.1:80:8080"},
			want:  Spec{"8080/tcp": {{HostIP: "127.0.0.1", HostPort: "80"}}},
		},
		{
			name:  "bindings accumulate in order",
			input: []string{"80", "443:8080", "127.0.0.1:80:8080"},
			want: Spec{
				"80/tcp":   {},
				"8080/tcp": {{HostPort: "443"}, {HostIP: "127.0.0.1", HostPort: "80"}},
			},
		},
		{
			name:  "bracketed ipv6",
			input: []string{"[::]:443:8080"},
			want:  Spec{"8080/tcp": {{HostIP: "[::]", HostPort: "443"}}},
		},
		{
			name:  "udp",
			input: []string{"5353:53/udp"},
			want:  Spec{"53/udp": {{HostPort: "5353"}}},
		},
		{
			name:  "engine picks host port",
			input: []string{"127.0.0.1::80"},
			want:  Spec{"80/tcp": {{HostIP: "127.0.0.1"}}},
		},
		{
			name:  "bare then published",
			input: []string{"80", "8080:80"},
			want:  Spec{"80/tcp": {{HostPort: "8080"}}},
		},
		{
			name:  "no specs",
			input: nil,
			want:  Spec{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"1:2:3:4",
		"10.0.0.1:80:8080:9090",
		"invalid",
		"80:invalid",
		"0",
		"70000",
		"80:70000",
		"localhost:80:8080",
		"80/icmp",
		"80/",
		"80/tcp/udp",
		"8080:80/",
		"[::]:8080",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse([]string{"80", input})
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", input)
			}
			if !errors.Is(err, ErrInvalidPortSpec) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidPortSpec", input, err)
			}

			var specErr *SpecError
			if !errors.As(err, &specErr) || specErr.Spec != input {
				t.Errorf("Parse(%q) error should carry the offending spec, got %v", input, err)
			}
		})
	}
}

func TestStringsRoundTrip(t *testing.T) {
	inputs := [][]string{
		{"80"},
		{"80", "443:8080", "127.0.0.1:80:8080"},
		{"[::]:443:8080", "53/udp", "5353:53/udp"},
		{"127.0.0.1::80", ":81"},
	}

	for _, input := range inputs {
		first, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", input, err)
		}

		second, err := Parse(first.Strings())
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", first.Strings(), err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip of %q: got %v, want %v", input, second, first)
		}
	}
}

func TestStringsOrder(t *testing.T) {
	spec, err := Parse([]string{"9000:9000", "80", "53/udp", "443:8080", "127.0.0.1:80:8080"})
	if err != nil {
		t.Fatalf("Parse unexpected error: %v", err)
	}

	want := []string{"53/udp", "80", "443:8080", "127.0.0.1:80:8080", "9000:9000"}
	got := spec.Strings()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %q, want %q", got, want)
	}
}

func TestExposedAndPortMap(t *testing.T) {
	spec, err := Parse([]string{"443:8080", "127.0.0.1:80:8080"})
	if err != nil {
		t.Fatalf("Parse unexpected error: %v", err)
	}
	if err := spec.Expose("9090", "53/udp"); err != nil {
		t.Fatalf("Expose unexpected error: %v", err)
	}

	wantExposed := nat.PortSet{"8080/tcp": {}, "9090/tcp": {}, "53/udp": {}}
	if got := spec.Exposed(); !reflect.DeepEqual(got, wantExposed) {
		t.Errorf("Exposed() = %v, want %v", got, wantExposed)
	}

	wantMap := nat.PortMap{
		"8080/tcp": {{HostPort: "443"}, {HostIP: "127.0.0.1", HostPort: "80"}},
	}
	if got := spec.PortMap(); !reflect.DeepEqual(got, wantMap) {
		t.Errorf("PortMap() = %v, want %v", got, wantMap)
	}
}

func TestExposeRejectsBindings(t *testing.T) {
	spec := Spec{}
	err := spec.Expose("8080:80")
	if !errors.Is(err, ErrInvalidPortSpec) {
		t.Errorf("Expose(%q) error = %v, want ErrInvalidPortSpec", "8080:80", err)
	}
}
