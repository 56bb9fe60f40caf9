package defaults

// Agent endpoint defaults.
const (
	// AgentPath is the path the Jolokia agent is served under.
	AgentPath = "/jolokia"

	// AgentPort is the port the agent listens on inside a pod.
	AgentPort = 8778

	// PodNamespace is used when a pod reference has no namespace.
	PodNamespace = "default"
)

// Limits.
const (
	// MaxResponseBytes bounds the size of a single agent response.
	MaxResponseBytes = 64 << 20

	// IntrospectConcurrency bounds parallel catalog fetches.
	IntrospectConcurrency = 4

	// RateLimitBurst is the request burst allowed when pacing is enabled.
	RateLimitBurst = 1
)
