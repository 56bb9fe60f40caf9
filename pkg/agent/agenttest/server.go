// Package agenttest provides an in-memory management agent speaking the
// agent's HTTP/JSON protocol, for tests.
package agenttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/NVIDIA/beanctl/pkg/bean"
)

// Attribute is a bean attribute held by the fake agent.
type Attribute struct {
	Name     string
	Type     string
	Desc     string
	Writable bool
	Value    any
}

// Argument is an operation parameter.
type Argument struct {
	Name string
	Type string
	Desc string
}

// Operation is a bean operation. Fn receives the decoded JSON arguments.
type Operation struct {
	Name string
	Desc string
	Ret  string
	Args []Argument
	Fn   func(args []any) (any, error)
}

// Bean is a registered bean.
type Bean struct {
	Name       string
	Class      string
	Desc       string
	Attributes []*Attribute
	Operations []*Operation
}

// Server is a fake agent backed by httptest.
type Server struct {
	*httptest.Server

	Username string
	Password string

	mu       sync.Mutex
	beans    map[string]*Bean
	requests []map[string]any
}

// NewServer starts a fake agent with the given beans. It is closed when the
// test ends.
func NewServer(t testing.TB, beans ...*Bean) *Server {
	t.Helper()

	s := &Server{beans: make(map[string]*Bean)}
	for _, b := range beans {
		s.Register(b)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Register adds or replaces a bean.
func (s *Server) Register(b *Bean) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beans[bean.MustParseObjectName(b.Name).CanonicalName()] = b
}

// Requests returns the request documents received so far.
func (s *Server) Requests() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsOfType returns the received requests of one type.
func (s *Server) RequestsOfType(typ string) []map[string]any {
	var out []map[string]any
	for _, r := range s.Requests() {
		if r["type"] == typ {
			out = append(out, r)
		}
	}
	return out
}

// Attribute returns the current value of an attribute.
func (s *Server) Attribute(beanName, attr string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.beans[bean.MustParseObjectName(beanName).CanonicalName()]
	if b == nil {
		return nil
	}
	for _, a := range b.Attributes {
		if a.Name == attr {
			return a.Value
		}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.Username != "" {
		u, p, ok := r.BasicAuth()
		if !ok || u != s.Username || p != s.Password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	var req map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, errorDoc(http.StatusBadRequest, "java.lang.IllegalArgumentException", err.Error()))
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	writeJSON(w, s.dispatch(req))
}

func (s *Server) dispatch(req map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ, _ := req["type"].(string)
	switch typ {
	case "version":
		return valueDoc(map[string]any{"agent": "2.0.0", "protocol": "7.3"})
	case "search":
		return s.search(str(req["mbean"]))
	case "list":
		return s.list(str(req["path"]))
	case "read":
		return s.read(str(req["mbean"]), str(req["attribute"]))
	case "write":
		return s.write(str(req["mbean"]), str(req["attribute"]), req["value"])
	case "exec":
		args, _ := req["arguments"].([]any)
		return s.exec(str(req["mbean"]), str(req["operation"]), args)
	default:
		return errorDoc(http.StatusBadRequest, "java.lang.IllegalArgumentException", "unknown request type "+typ)
	}
}

func (s *Server) lookup(name string) (*Bean, map[string]any) {
	on, err := bean.ParseObjectName(name)
	if err != nil {
		return nil, errorDoc(http.StatusBadRequest, "javax.management.MalformedObjectNameException", err.Error())
	}
	b := s.beans[on.CanonicalName()]
	if b == nil {
		return nil, errorDoc(http.StatusNotFound, "javax.management.InstanceNotFoundException", name)
	}
	return b, nil
}

func (s *Server) search(pattern string) map[string]any {
	p, err := bean.ParseObjectName(pattern)
	if err != nil {
		return errorDoc(http.StatusBadRequest, "javax.management.MalformedObjectNameException", err.Error())
	}

	names := []string{}
	for _, b := range s.beans {
		if matches(p, bean.MustParseObjectName(b.Name)) {
			names = append(names, b.Name)
		}
	}
	return valueDoc(names)
}

func matches(pattern, name bean.ObjectName) bool {
	if ok, _ := path.Match(pattern.Domain, name.Domain); !ok {
		return false
	}
	if !pattern.PropertyPattern && len(pattern.Properties) != len(name.Properties) {
		return false
	}
	for _, pp := range pattern.Properties {
		found := false
		for _, np := range name.Properties {
			if np.Key == pp.Key {
				ok, _ := path.Match(pp.Value, np.Value)
				found = ok
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Server) list(p string) map[string]any {
	domain, keys, ok := strings.Cut(p, "/")
	if !ok {
		return errorDoc(http.StatusBadRequest, "java.lang.IllegalArgumentException", "unsupported list path "+p)
	}
	unescape := strings.NewReplacer("!/", "/", "!!", "!")
	b, doc := s.lookup(unescape.Replace(domain) + ":" + unescape.Replace(keys))
	if b == nil {
		return doc
	}

	attrs := map[string]any{}
	for _, a := range b.Attributes {
		attrs[a.Name] = map[string]any{"type": a.Type, "desc": a.Desc, "rw": a.Writable}
	}
	ops := map[string]any{}
	for _, o := range b.Operations {
		args := []any{}
		for _, a := range o.Args {
			args = append(args, map[string]any{"name": a.Name, "type": a.Type, "desc": a.Desc})
		}
		desc := map[string]any{"args": args, "ret": o.Ret, "desc": o.Desc}
		if existing, ok := ops[o.Name]; ok {
			if overloads, ok := existing.([]any); ok {
				ops[o.Name] = append(overloads, desc)
			} else {
				ops[o.Name] = []any{existing, desc}
			}
			continue
		}
		ops[o.Name] = desc
	}

	return valueDoc(map[string]any{"class": b.Class, "desc": b.Desc, "attr": attrs, "op": ops})
}

func (s *Server) read(name, attr string) map[string]any {
	b, doc := s.lookup(name)
	if b == nil {
		return doc
	}
	for _, a := range b.Attributes {
		if a.Name == attr {
			return valueDoc(a.Value)
		}
	}
	return errorDoc(http.StatusNotFound, "javax.management.AttributeNotFoundException", "No such attribute: "+attr)
}

func (s *Server) write(name, attr string, value any) map[string]any {
	b, doc := s.lookup(name)
	if b == nil {
		return doc
	}
	for _, a := range b.Attributes {
		if a.Name != attr {
			continue
		}
		if !a.Writable {
			return errorDoc(http.StatusBadRequest, "java.lang.IllegalArgumentException", "attribute "+attr+" is read-only")
		}
		old := a.Value
		a.Value = value
		return valueDoc(old)
	}
	return errorDoc(http.StatusNotFound, "javax.management.AttributeNotFoundException", "No such attribute: "+attr)
}

func (s *Server) exec(name, operation string, args []any) map[string]any {
	b, doc := s.lookup(name)
	if b == nil {
		return doc
	}

	opName, sig, hasSig := strings.Cut(operation, "(")
	sig = strings.TrimSuffix(sig, ")")
	for _, o := range b.Operations {
		if o.Name != opName {
			continue
		}
		if hasSig && sig != signature(o) {
			continue
		}
		if len(args) != len(o.Args) {
			return errorDoc(http.StatusBadRequest, "java.lang.IllegalArgumentException",
				fmt.Sprintf("Invalid number of operation arguments. Operation %s needs %d parameters but %d were given",
					opName, len(o.Args), len(args)))
		}
		if o.Fn == nil {
			return valueDoc(nil)
		}
		v, err := o.Fn(args)
		if err != nil {
			return errorDoc(http.StatusInternalServerError, "javax.management.MBeanException", err.Error())
		}
		return valueDoc(v)
	}
	return errorDoc(http.StatusNotFound, "java.lang.NoSuchMethodException", "No operation "+operation+" found on MBean "+name)
}

func signature(o *Operation) string {
	types := make([]string, len(o.Args))
	for i, a := range o.Args {
		types[i] = a.Type
	}
	return strings.Join(types, ",")
}

func valueDoc(v any) map[string]any {
	return map[string]any{"value": v, "status": http.StatusOK}
}

func errorDoc(status int, errorType, msg string) map[string]any {
	return map[string]any{"status": status, "error_type": errorType, "error": errorType + " : " + msg}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
