package engine

// Container is a raw container descriptor as reported by the runtime.
type Container struct {
	ID     string
	Names  []string
	Image  string
	State  string // running, exited, etc.
	Status string // human readable, e.g. "Up 3 minutes"
	Ports  []Port
	Labels map[string]string
}

// Port is a port mapping as reported by the runtime.
// PublicPort is zero when the private port is not published on the host.
type Port struct {
	IP          string
	PrivatePort uint16
	PublicPort  uint16
	Protocol    string // tcp, udp, sctp
}

// LogChunk is one unit of streamed container output, in runtime order.
type LogChunk struct {
	Stream string // stdout, stderr, or empty for TTY containers
	Data   []byte
}

// String returns the chunk payload as text.
func (c LogChunk) String() string {
	return string(c.Data)
}

// VersionInfo holds runtime version and build metadata.
type VersionInfo struct {
	Backend       string `json:"backend"`
	Version       string `json:"version"`
	APIVersion    string `json:"api_version"`
	MinAPIVersion string `json:"min_api_version,omitempty"`
	GitCommit     string `json:"git_commit,omitempty"`
	GoVersion     string `json:"go_version,omitempty"`
	Os            string `json:"os"`
	Arch          string `json:"arch"`
	KernelVersion string `json:"kernel_version,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// Info is free-form inspect output, passed through without interpretation.
type Info map[string]any

// FilterOptions contains options for filtering containers
type FilterOptions struct {
	NamePattern string // Regex pattern for container names
	IncludeAll  bool   // Include stopped containers
}
