package blacklist

// Config holds configuration for the address blacklist.
type Config struct {
	// File is the path of the YAML blacklist. A missing file means no entries.
	File string `mapstructure:"file" default:"blacklist.yaml"`
}
