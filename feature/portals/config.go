package portals

// Config holds configuration for published portal records.
type Config struct {
	// Backend selects the sink (file, s3).
	Backend string `mapstructure:"backend" default:"file"`
	// Dir is the local output directory. The summary is always written here.
	Dir string `mapstructure:"dir" default:"./out"`
	// Prefix is the object key prefix for the s3 backend.
	Prefix string `mapstructure:"prefix" default:"portals"`
	// AggregateAddress, when set, makes the summary read records published at
	// this address instead of the local sink.
	AggregateAddress string `mapstructure:"aggregate_address" default:""`
}

const (
	BackendFile = "file"
	BackendS3   = "s3"
)
