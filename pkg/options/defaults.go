package options

const (
	// PageSize is the fixed on-disk page size in bytes.
	PageSize = 16384

	// DefaultBufferSize mirrors the original's 2500-page default write
	// buffer.
	DefaultBufferSize uint32 = 2500 * PageSize

	// MinGrowthPages is the smallest growth factor a growable partition
	// will accept; smaller requests are clamped up to this value.
	MinGrowthPages uint16 = 8

	// DefaultGrowthPages is the growth factor used when none is given.
	DefaultGrowthPages uint16 = MinGrowthPages

	// DefaultPartitionPath is used when no path is configured.
	DefaultPartitionPath = "./finchdb.part"

	// DefaultPort mirrors the original's default listen port.
	DefaultPort uint16 = 8080
)

var defaultOptions = Options{
	BufferSizeBytes: DefaultBufferSize,
	PartitionPath:   DefaultPartitionPath,
	GrowthPages:     DefaultGrowthPages,
	Port:            DefaultPort,
	DeleteOnClose:   false,
	Trace:           false,
}

// NewDefaultOptions returns FinchDB's default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
