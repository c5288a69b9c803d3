package profile

// Base is the process-wide runtime configuration.
type Base struct {
	GoMaxProcs int8   `toml:"go_max_procs"`
	Mode       string `toml:"mode"`
}

// Kafka configures the broker list backing the trail-event sink.
type Kafka struct {
	Brokers string `toml:"url"`
}

// Service configures the admin HTTP surface.
type Service struct {
	Host            string `toml:"host"`
	PprofEnabled    bool   `toml:"pprof_enabled"`
	PprofPathPrefix string `toml:"pprof_path_prefix"`
}

// Logger configures process-wide log formatting.
type Logger struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	TimeFormat string `toml:"time_format"`
}
