// Package bean models the management beans exposed by a remote agent: their
// object names and the introspection data (attributes, operations and
// parameters) the agent publishes for each of them.
package bean
