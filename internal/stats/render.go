package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rickgorman/dockers/internal/engine"
)

// Header is the first line of every frame.
const Header = "Container ID\tName\tCPU\tMemory\tNetwork\tBlock I/O"

const placeholder = "-"

// Render writes the header and one tab-separated row per snapshot.
func Render(w io.Writer, snaps []engine.Snapshot) {
	fmt.Fprintln(w, Header)
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s/%s\n",
			engine.ShortID(s.ID),
			s.Name,
			s.CPU,
			optional(s.Memory),
			optional(s.NetworkRx),
			optional(s.BlockRead),
			optional(s.BlockWrite),
		)
	}
}

func optional(v *uint64) string {
	if v == nil {
		return placeholder
	}
	return strconv.FormatUint(*v, 10)
}
