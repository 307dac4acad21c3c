package engine

import "strings"

// wireStats holds the subset of a stats document dockers renders.
// Pointer fields stay nil when the engine omits them, which is how
// absent memory or I/O figures are told apart from zero.
type wireStats struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	CPUStats struct {
		CPUUsage struct {
			TotalUsage uint64 `json:"total_usage"`
		} `json:"cpu_usage"`
	} `json:"cpu_stats"`

	MemoryStats struct {
		Usage *uint64 `json:"usage"`
	} `json:"memory_stats"`

	Networks map[string]struct {
		RxBytes uint64 `json:"rx_bytes"`
	} `json:"networks"`

	BlkioStats struct {
		IoServiceBytesRecursive []struct {
			Op    string `json:"op"`
			Value uint64 `json:"value"`
		} `json:"io_service_bytes_recursive"`
	} `json:"blkio_stats"`

	// Only reported on Windows.
	StorageStats struct {
		ReadSizeBytes  *uint64 `json:"read_size_bytes"`
		WriteSizeBytes *uint64 `json:"write_size_bytes"`
	} `json:"storage_stats"`
}

func (w wireStats) snapshot() Snapshot {
	s := Snapshot{
		ID:         w.ID,
		Name:       CleanName(w.Name),
		CPU:        w.CPUStats.CPUUsage.TotalUsage,
		Memory:     w.MemoryStats.Usage,
		BlockRead:  w.StorageStats.ReadSizeBytes,
		BlockWrite: w.StorageStats.WriteSizeBytes,
	}

	if w.Networks != nil {
		var rx uint64
		for _, n := range w.Networks {
			rx += n.RxBytes
		}
		s.NetworkRx = &rx
	}

	if s.BlockRead == nil && s.BlockWrite == nil && len(w.BlkioStats.IoServiceBytesRecursive) > 0 {
		var read, write uint64
		for _, e := range w.BlkioStats.IoServiceBytesRecursive {
			switch strings.ToLower(e.Op) {
			case "read":
				read += e.Value
			case "write":
				write += e.Value
			}
		}
		s.BlockRead = &read
		s.BlockWrite = &write
	}

	return s
}
