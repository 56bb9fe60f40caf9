// Package defaults provides centralized configuration constants for beanctl.
//
// This package defines the agent endpoint defaults, response limits and
// concurrency bounds used across the codebase.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/beanctl/pkg/defaults"
//
//	endpoint := agent.EndpointURL(hostPort, defaults.AgentPath, false)
//
// # Guidelines
//
//   - Agent requests have no client-side timeout by default; --timeout
//     bounds a whole invocation instead.
//   - Request pacing is off by default and never drops requests.
package defaults
