package bean

// VoidType is the return type of operations that return nothing.
const VoidType = "void"

// Info is the introspection snapshot of one bean: everything the agent
// publishes about its attributes and operations. It is fetched once per
// batch and treated as read-only.
type Info struct {
	ClassName   string          `json:"className,omitempty" yaml:"className,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Attributes  []AttributeInfo `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Operations  []OperationInfo `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// AttributeInfo describes a readable, possibly writable, typed attribute.
type AttributeInfo struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Writable    bool   `json:"writable" yaml:"writable"`
}

// OperationInfo describes an invocable operation.
type OperationInfo struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	ReturnType  string          `json:"returnType" yaml:"returnType"`
	Parameters  []ParameterInfo `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ParameterInfo describes one operation parameter.
type ParameterInfo struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Signature returns the declared parameter type names in order.
func (o OperationInfo) Signature() []string {
	sig := make([]string, len(o.Parameters))
	for i, p := range o.Parameters {
		sig[i] = p.Type
	}
	return sig
}

// IsVoid reports whether the operation returns nothing.
func (o OperationInfo) IsVoid() bool {
	return o.ReturnType == VoidType || o.ReturnType == "java.lang.Void"
}

// Attribute returns the first attribute with the given name.
func (i *Info) Attribute(name string) (AttributeInfo, bool) {
	for _, a := range i.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeInfo{}, false
}

// Operation returns the first operation with the given name.
func (i *Info) Operation(name string) (OperationInfo, bool) {
	for _, o := range i.Operations {
		if o.Name == name {
			return o, true
		}
	}
	return OperationInfo{}, false
}
