// Package lister formats a bean's attribute and operation catalog for
// display when no command is given.
package lister

import (
	"io"
	"strconv"
	"strings"

	"github.com/NVIDIA/beanctl/pkg/bean"
)

// List returns the catalog text:
//
//	Attributes:
//	 <name>: <description> (type=<type>)
//	Operations:
//	 <name>: <description>
//	  Parameters <n>, return type=<type>
//	   name=<p> type=<t> <description>
//
// Sections with no entries are omitted. Every line ends in a newline.
func List(info *bean.Info) string {
	var b strings.Builder
	_ = Write(&b, info)
	return b.String()
}

// Write writes the catalog text of info to w.
func Write(w io.Writer, info *bean.Info) error {
	if info == nil {
		return nil
	}

	var b strings.Builder
	if len(info.Attributes) > 0 {
		b.WriteString("Attributes:\n")
		for _, a := range info.Attributes {
			b.WriteString(" " + a.Name + ": " + a.Description + " (type=" + a.Type + ")\n")
		}
	}

	if len(info.Operations) > 0 {
		b.WriteString("Operations:\n")
		for _, op := range info.Operations {
			b.WriteString(" " + op.Name + ": " + op.Description + "\n")
			b.WriteString("  Parameters " + strconv.Itoa(len(op.Parameters)) + ", return type=" + op.ReturnType)
			for _, p := range op.Parameters {
				b.WriteString("\n   name=" + p.Name + " type=" + p.Type + " " + p.Description)
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
