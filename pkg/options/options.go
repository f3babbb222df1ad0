// Package options provides the functional-options configuration surface
// for FinchDB: partition path and growth policy, write-buffer size, the
// listener port, and whether a partition file is removed from disk when
// the partition is closed for the last time.
package options

import "strings"

// Options configures a running FinchDB instance end to end, the Go
// expression of the original control_block_t (CB).
type Options struct {
	// BufferSizeBytes is the write manager's swap-and-flush threshold.
	BufferSizeBytes uint32 `json:"bufferSizeBytes"`

	// PartitionPath is the path of the partition's backing file.
	PartitionPath string `json:"partitionPath"`

	// GrowthPages is the number of pages a growable partition extends by
	// when every FSIP reports FULL. Clamped to a minimum of 8.
	GrowthPages uint16 `json:"growthPages"`

	// Port is the TCP port the request layer listens on.
	Port uint16 `json:"port"`

	// DeleteOnClose, when set, removes the partition file from disk when
	// the partition's open count drops to zero in Partition.Close (at
	// shutdown in cmd/finchd) — the original's destructor behavior,
	// surfaced here as an explicit policy rather than an implicit one.
	DeleteOnClose bool `json:"deleteOnClose"`

	// Trace sets the logger to debug level. The only engine event logged
	// at that level is partition growth; page allocations, flush start/end
	// and key misses are not logged.
	Trace bool `json:"trace"`
}

// Option mutates an Options value under construction.
type Option func(*Options)

// New builds an Options value starting from the defaults and applying
// opts in order.
func New(opts ...Option) Options {
	o := NewDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.GrowthPages < MinGrowthPages {
		o.GrowthPages = MinGrowthPages
	}
	return o
}

// WithBufferSize sets the write manager's flush threshold in bytes.
func WithBufferSize(size uint32) Option {
	return func(o *Options) {
		if size > 0 {
			o.BufferSizeBytes = size
		}
	}
}

// WithPartitionPath sets the partition file's path.
func WithPartitionPath(path string) Option {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.PartitionPath = path
		}
	}
}

// WithGrowthPages sets the growable partition's extension size, clamped
// to a minimum of MinGrowthPages by New.
func WithGrowthPages(pages uint16) Option {
	return func(o *Options) {
		o.GrowthPages = pages
	}
}

// WithPort sets the request layer's listen port.
func WithPort(port uint16) Option {
	return func(o *Options) {
		o.Port = port
	}
}

// WithDeleteOnClose toggles partition-file removal on the partition's
// last close.
func WithDeleteOnClose(del bool) Option {
	return func(o *Options) {
		o.DeleteOnClose = del
	}
}

// WithTrace toggles debug-level engine logging.
func WithTrace(trace bool) Option {
	return func(o *Options) {
		o.Trace = trace
	}
}
