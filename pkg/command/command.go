// Package command parses the compact command tokens accepted after the bean
// name on the command line.
//
// A token is either a bare feature name or a name followed by "=" and a
// comma-separated argument list:
//
//	Status
//	schedule=http://www.archive.org
//	setLoggerLevel=org.archive.crawler.Heritrix,FINE
//
// No escaping is supported, so argument values cannot contain "," or "=".
package command

import (
	"strings"

	"github.com/NVIDIA/beanctl/pkg/errors"
)

// Command is a parsed command token.
type Command struct {
	// Name is the attribute or operation name.
	Name string
	// Args are the plain-text arguments, empty for a get or a no-arg call.
	Args []string
	// Raw is the token as given.
	Raw string
}

// HasArgs reports whether the command carries at least one argument.
func (c *Command) HasArgs() bool {
	return len(c.Args) > 0
}

// Parse splits raw into a name and its arguments.
func Parse(raw string) (*Command, error) {
	name, rest, hasArgs := strings.Cut(raw, "=")
	if name == "" {
		return nil, errors.WrapWithContext(errors.ErrCodeMalformedCommand,
			"command must start with an attribute or operation name", nil,
			map[string]any{"command": raw})
	}

	if strings.Contains(rest, "=") {
		return nil, errors.WrapWithContext(errors.ErrCodeMalformedCommand,
			"argument values cannot contain '='", nil,
			map[string]any{"command": raw})
	}

	cmd := &Command{Name: name, Raw: raw}
	if hasArgs && rest != "" {
		cmd.Args = splitArgs(rest)
	}
	return cmd, nil
}

// splitArgs splits on commas, keeping interior empty values and dropping
// trailing ones.
func splitArgs(s string) []string {
	args := strings.Split(s, ",")
	end := len(args)
	for end > 0 && args[end-1] == "" {
		end--
	}
	return args[:end]
}
