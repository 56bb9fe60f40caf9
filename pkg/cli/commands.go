/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/beanctl/pkg/bean"
	"github.com/NVIDIA/beanctl/pkg/defaults"
	"github.com/NVIDIA/beanctl/pkg/errors"
	"github.com/NVIDIA/beanctl/pkg/header"
	"github.com/NVIDIA/beanctl/pkg/invoker"
)

// runBatch is the root action: list beans, describe one, or run commands.
func runBatch(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	out, closeOut, err := newOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	s, err := openSession(ctx, cfg, cmd.Args().Slice())
	if err != nil {
		return err
	}
	defer s.close()

	if len(s.rest) == 0 {
		names, err := s.QueryNames(ctx, nil)
		if err != nil {
			return err
		}
		return out.Serialize(ctx, newBeanList(s.endpoint, names))
	}

	names, err := queryBeans(ctx, s, s.rest[0])
	if err != nil {
		return err
	}
	commands := s.rest[1:]

	if len(names) > 1 {
		if len(commands) > 0 {
			slog.Warn("bean pattern matches several beans, commands not run", "bean", s.rest[0], "matches", len(names))
		}
		return out.Serialize(ctx, newBeanList(s.endpoint, names))
	}

	name := names[0]
	if len(commands) == 0 {
		info, err := s.Introspect(ctx, name)
		if err != nil {
			return err
		}
		return out.Serialize(ctx, newBeanInfo(s.endpoint, []BeanDescription{{Bean: name.CanonicalName(), Info: info}}))
	}

	outputs, runErr := invoker.New(s).Run(ctx, name, commands)
	if runErr != nil && len(outputs) == 0 {
		return runErr
	}
	if err := out.Serialize(ctx, newBeanResults(s.endpoint, name, outputs)); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// queryBeans resolves a BEAN argument to the registered beans it names.
func queryBeans(ctx context.Context, s *session, arg string) ([]bean.ObjectName, error) {
	pattern, err := parseBeanName(arg)
	if err != nil {
		return nil, err
	}
	names, err := s.QueryNames(ctx, &pattern)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.WrapWithContext(errors.ErrCodeRemoteNotFound, "not registered bean", nil,
			map[string]any{"bean": arg})
	}
	return names, nil
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List registered bean names",
		ArgsUsage: "USER:PASS|- HOST:PORT [PATTERN]",
		Description: `List the canonical names of the beans matching PATTERN, or of every
registered bean when PATTERN is omitted. Patterns use the usual object
name wildcards, e.g. "java.lang:type=*" or "org.archive.crawler:*".`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			ctx, cancel := withTimeout(ctx, cfg)
			defer cancel()

			out, closeOut, err := newOutput(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeOut()

			s, err := openSession(ctx, cfg, cmd.Args().Slice())
			if err != nil {
				return err
			}
			defer s.close()

			var names []bean.ObjectName
			switch len(s.rest) {
			case 0:
				names, err = s.QueryNames(ctx, nil)
			case 1:
				var pattern bean.ObjectName
				if pattern, err = parseBeanName(s.rest[0]); err == nil {
					names, err = s.QueryNames(ctx, &pattern)
				}
			default:
				return fmt.Errorf("list takes at most one pattern, got %d arguments", len(s.rest))
			}
			if err != nil {
				return err
			}

			return out.Serialize(ctx, newBeanList(s.endpoint, names))
		},
	}
}

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Describe the attributes and operations of beans",
		ArgsUsage: "USER:PASS|- HOST:PORT BEAN",
		Description: `Print the attribute and operation catalog of every bean matching BEAN.
Catalogs of several beans are fetched in parallel and printed in name order.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			ctx, cancel := withTimeout(ctx, cfg)
			defer cancel()

			out, closeOut, err := newOutput(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeOut()

			s, err := openSession(ctx, cfg, cmd.Args().Slice())
			if err != nil {
				return err
			}
			defer s.close()

			if len(s.rest) != 1 {
				return fmt.Errorf("info takes exactly one BEAN argument, got %d", len(s.rest))
			}

			names, err := queryBeans(ctx, s, s.rest[0])
			if err != nil {
				return err
			}

			beans, err := describe(ctx, s, names)
			if err != nil {
				return err
			}
			return out.Serialize(ctx, newBeanInfo(s.endpoint, beans))
		},
	}
}

// describe introspects names concurrently. The result keeps the order of
// names.
func describe(ctx context.Context, s *session, names []bean.ObjectName) ([]BeanDescription, error) {
	beans := make([]BeanDescription, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaults.IntrospectConcurrency)
	for i, n := range names {
		g.Go(func() error {
			info, err := s.Introspect(gctx, n)
			if err != nil {
				return err
			}
			beans[i] = BeanDescription{Bean: n.CanonicalName(), Info: info}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return beans, nil
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "Show the beanctl version and, given an agent, the agent's version",
		ArgsUsage: "[USER:PASS|- HOST:PORT]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			ctx, cancel := withTimeout(ctx, cfg)
			defer cancel()

			out, closeOut, err := newOutput(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeOut()

			report := &VersionReport{Client: version}
			report.Header = *header.New(header.WithKind(KindVersion))

			if cmd.Args().Present() {
				s, err := openSession(ctx, cfg, cmd.Args().Slice())
				if err != nil {
					return err
				}
				defer s.close()

				v, err := s.Version(ctx)
				if err != nil {
					return err
				}
				report.Agent = v
				report.Header.Metadata["agent"] = s.endpoint
			}

			return out.Serialize(ctx, report)
		},
	}
}
