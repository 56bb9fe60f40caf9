// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the command-line interface of beanctl.
//
// # Overview
//
// beanctl queries and manipulates the management beans of a remote JVM
// through a Jolokia agent. It is a scriptable replacement for the classic
// command-line JMX client: one invocation connects, runs a batch of
// commands against a bean and prints the results.
//
// # Usage
//
//	beanctl [flags] USER:PASS|- HOST:PORT [BEAN] [COMMAND...]
//
// With only HOST:PORT every registered bean name is listed. A BEAN pattern
// matching several beans lists their canonical names, and a pattern matching
// nothing fails with "not registered bean". For a single bean without
// commands the attribute and operation catalog is printed:
//
//	beanctl - localhost:8778 java.lang:type=Threading
//
// Commands are attribute or operation names, optionally followed by "=" and
// comma-separated arguments. Names starting with an upper-case letter are
// tried as attributes first, others as operations first:
//
//	beanctl admin:secret crawler:8778 org.archive.crawler:name=Heritrix,type=Service \
//	    Status Threads=50 schedule=http://example.org/
//
// Commands run in order and the first failure stops the batch; the results
// of the commands that completed are still printed.
//
// # Commands
//
// list - bean names matching an optional pattern:
//
//	beanctl list - localhost:8778 'java.lang:type=*'
//
// info - catalogs of every bean matching a pattern, fetched in parallel:
//
//	beanctl info - localhost:8778 'java.lang:type=MemoryPool,*'
//
// version - client version, and the agent's when a target is given:
//
//	beanctl version - localhost:8778
//
// # Reaching the agent
//
// HOST:PORT and --path (default /jolokia) form the agent URL; --tls
// switches to https and --insecure-tls skips certificate checks. --url
// gives the full agent URL instead of HOST:PORT. --pod namespace/name[:port]
// tunnels requests through the Kubernetes API server pod proxy using
// --kubeconfig and --kube-context:
//
//	beanctl --pod monitoring/crawler-0 - java.lang:type=Runtime Uptime
//
// # Output Formats
//
// text (default) prints "name: value" lines with nested composite and
// tabular values flattened into indented blocks. json and yaml wrap the
// results in a document with kind, apiVersion and metadata:
//
//	beanctl --format yaml - localhost:8778 java.lang:type=Memory HeapMemoryUsage
//
// # Configuration
//
// Settings are resolved in the order flags, environment, config file
// (--config, YAML or JSON with comments), defaults.
//
// # Environment Variables
//
//	BEANCTL_URL           Full agent URL
//	BEANCTL_CREDENTIALS   USER:PASS, replaces the positional argument
//	BEANCTL_PATH          Agent path
//	BEANCTL_FORMAT        Output format
//	BEANCTL_TIMEOUT       Invocation timeout (duration or seconds)
//	BEANCTL_CONFIG        Config file path
//	LOG_LEVEL             Set logging verbosity (debug, info, warn, error)
//	KUBECONFIG            Path to kubeconfig file
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, agent or command failure)
//	2  Context canceled or timeout
package cli
