/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/NVIDIA/beanctl/pkg/agent"
	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/header"
	"github.com/NVIDIA/beanctl/pkg/invoker"
	"github.com/NVIDIA/beanctl/pkg/lister"
)

// Kinds of the structured output documents.
const (
	KindBeanResults = "BeanResults"
	KindBeanList    = "BeanList"
	KindBeanInfo    = "BeanInfo"
	KindVersion     = "Version"
)

// BeanResults holds the outputs of the commands run against one bean.
type BeanResults struct {
	header.Header `json:",inline" yaml:",inline"`

	Bean    string           `json:"bean" yaml:"bean"`
	Results []invoker.Output `json:"results" yaml:"results"`
}

func newBeanResults(endpoint string, name bean.ObjectName, outputs []invoker.Output) *BeanResults {
	r := &BeanResults{Bean: name.CanonicalName(), Results: outputs}
	r.Header = *header.New(header.WithMetadata("agent", endpoint), header.WithKind(KindBeanResults))
	if r.Results == nil {
		r.Results = []invoker.Output{}
	}
	return r
}

// RenderText writes one "feature: value" line (or block) per output.
// Attribute writes and void operations print nothing.
func (r *BeanResults) RenderText(w io.Writer) error {
	for _, out := range r.Results {
		text := out.Text()
		if text == "" {
			continue
		}
		if _, err := io.WriteString(w, strings.TrimSuffix(text, "\n")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// BeanList holds bean names in canonical form.
type BeanList struct {
	header.Header `json:",inline" yaml:",inline"`

	Names []string `json:"names" yaml:"names"`
}

func newBeanList(endpoint string, names []bean.ObjectName) *BeanList {
	l := &BeanList{Names: make([]string, len(names))}
	l.Header = *header.New(header.WithMetadata("agent", endpoint), header.WithKind(KindBeanList))
	for i, n := range names {
		l.Names[i] = n.CanonicalName()
	}
	return l
}

// RenderText writes one name per line.
func (l *BeanList) RenderText(w io.Writer) error {
	for _, n := range l.Names {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}

// BeanDescription is the catalog of one bean.
type BeanDescription struct {
	Bean string     `json:"bean" yaml:"bean"`
	Info *bean.Info `json:"info" yaml:"info"`
}

// BeanInfo holds the catalogs of one or more beans.
type BeanInfo struct {
	header.Header `json:",inline" yaml:",inline"`

	Beans []BeanDescription `json:"beans" yaml:"beans"`
}

func newBeanInfo(endpoint string, beans []BeanDescription) *BeanInfo {
	bi := &BeanInfo{Beans: beans}
	bi.Header = *header.New(header.WithMetadata("agent", endpoint), header.WithKind(KindBeanInfo))
	return bi
}

// RenderText writes the option listing. With several beans each listing is
// preceded by the bean's name and separated by a blank line.
func (bi *BeanInfo) RenderText(w io.Writer) error {
	if len(bi.Beans) == 1 {
		return lister.Write(w, bi.Beans[0].Info)
	}
	for i, d := range bi.Beans {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, d.Bean); err != nil {
			return err
		}
		if err := lister.Write(w, d.Info); err != nil {
			return err
		}
	}
	return nil
}

// VersionReport is the output of the version command.
type VersionReport struct {
	header.Header `json:",inline" yaml:",inline"`

	Client string             `json:"client" yaml:"client"`
	Agent  *agent.VersionInfo `json:"agent,omitempty" yaml:"agent,omitempty"`
}

// RenderText writes the client version and, when known, the agent's.
func (v *VersionReport) RenderText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "beanctl %s\n", v.Client); err != nil {
		return err
	}
	if v.Agent != nil {
		if _, err := fmt.Fprintf(w, "agent %s (protocol %s)\n", v.Agent.Agent, v.Agent.Protocol); err != nil {
			return err
		}
	}
	return nil
}
