package http

type Options struct {
	Metrics MetricsOption
	Health  HealthOption
}

type MetricsOption struct {
	Enabled                   bool   `mapstructure:"enabled" json:"enabled"`
	Path                      string `mapstructure:"path" json:"path"`
	EnabledGoCollector        bool   `mapstructure:"enabled_go_collector" json:"enabled_go_collector"`
	EnabledBuildInfoCollector bool   `mapstructure:"enabled_build_info_collector" json:"enabled_build_info_collector"`
}

func (m *MetricsOption) init() {
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

type HealthOption struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" json:"path"`
}

func (h *HealthOption) init() {
	if h.Path == "" {
		h.Path = "/health"
	}
}
