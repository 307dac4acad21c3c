package ports_test

import (
	"errors"
	"fmt"

	"github.com/rickgorman/dockers/internal/ports"
)

// ExampleParse demonstrates parsing publish flags and exposing extra ports.
func ExampleParse() {
	spec, err := ports.Parse([]string{"8080:80", "127.0.0.1:5432:5432", "53/udp"})
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := spec.Expose("9000"); err != nil {
		fmt.Println(err)
		return
	}

	for _, s := range spec.Strings() {
		fmt.Println(s)
	}
	fmt.Println(len(spec.PortMap()), "published,", len(spec.Exposed()), "exposed")
	// Output:
	// 53/udp
	// 8080:80
	// 127.0.0.1:5432:5432
	// 9000
	// 2 published, 4 exposed
}

// ExampleParse_invalid demonstrates matching parse failures.
func ExampleParse_invalid() {
	_, err := ports.Parse([]string{"80/tcp/udp"})

	var specErr *ports.SpecError
	if errors.As(err, &specErr) {
		fmt.Println("rejected", specErr.Spec)
	}
	fmt.Println(errors.Is(err, ports.ErrInvalidPortSpec))
	// Output:
	// rejected 80/tcp/udp
	// true
}
