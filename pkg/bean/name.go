package bean

import (
	"sort"
	"strings"

	"github.com/NVIDIA/beanctl/pkg/errors"
)

// ObjectName identifies a bean registered with the agent, e.g.
// "java.lang:type=Memory" or "org.archive.crawler:name=Heritrix,type=Service".
// A name may be a pattern ("java.lang:*", "*:type=GarbageCollector,*").
type ObjectName struct {
	Domain     string
	Properties []Property
	// PropertyPattern is set when the key list ends in a "*" wildcard.
	PropertyPattern bool
}

// Property is one key=value pair of an ObjectName.
type Property struct {
	Key   string
	Value string
}

// ParseObjectName parses the textual form of an object name.
func ParseObjectName(s string) (ObjectName, error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return ObjectName{}, errors.Newf(errors.ErrCodeInvalidRequest, "object name %q: missing domain separator", s)
	}

	name := ObjectName{Domain: s[:idx]}
	rest := s[idx+1:]
	if rest == "" {
		return ObjectName{}, errors.Newf(errors.ErrCodeInvalidRequest, "object name %q: empty key property list", s)
	}

	for _, part := range splitProperties(rest) {
		if part == "*" {
			name.PropertyPattern = true
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq <= 0 {
			return ObjectName{}, errors.Newf(errors.ErrCodeInvalidRequest, "object name %q: malformed key property %q", s, part)
		}
		key, value := part[:eq], part[eq+1:]
		if value == "" {
			return ObjectName{}, errors.Newf(errors.ErrCodeInvalidRequest, "object name %q: empty value for key %q", s, key)
		}
		for _, p := range name.Properties {
			if p.Key == key {
				return ObjectName{}, errors.Newf(errors.ErrCodeInvalidRequest, "object name %q: duplicate key %q", s, key)
			}
		}
		name.Properties = append(name.Properties, Property{Key: key, Value: value})
	}

	return name, nil
}

// MustParseObjectName is ParseObjectName that panics on error. Intended for
// constants and tests.
func MustParseObjectName(s string) ObjectName {
	n, err := ParseObjectName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// splitProperties splits a key property list on commas outside quoted values.
func splitProperties(s string) []string {
	var (
		parts  []string
		quoted bool
		start  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}


// KeyPropertyList returns the properties in declaration order, joined with commas.
func (n ObjectName) KeyPropertyList() string {
	return n.joinProperties(n.Properties)
}

// CanonicalKeyPropertyList returns the properties sorted by key.
func (n ObjectName) CanonicalKeyPropertyList() string {
	sorted := make([]Property, len(n.Properties))
	copy(sorted, n.Properties)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return n.joinProperties(sorted)
}

func (n ObjectName) joinProperties(props []Property) string {
	var b strings.Builder
	for i, p := range props {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	if n.PropertyPattern {
		if len(props) > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('*')
	}
	return b.String()
}

// CanonicalName returns domain:sorted-key-list.
func (n ObjectName) CanonicalName() string {
	return n.Domain + ":" + n.CanonicalKeyPropertyList()
}

// String returns the name with keys in declaration order.
func (n ObjectName) String() string {
	return n.Domain + ":" + n.KeyPropertyList()
}

// MarshalText encodes the name in its textual form.
func (n ObjectName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText parses the textual form.
func (n *ObjectName) UnmarshalText(text []byte) error {
	parsed, err := ParseObjectName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
