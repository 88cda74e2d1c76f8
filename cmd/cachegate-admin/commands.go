package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/cachegate/cachegate/internal/command"
	"github.com/cachegate/cachegate/internal/core"
)

func newCommandsCmd(reg *command.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List engine commands and their inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderCommands(cmd.OutOrStdout(), reg.Commands())
			return nil
		},
	}
}

func renderCommands(w io.Writer, cmds []command.Command) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Command", "Summary", "Required", "Optional"})
	for _, c := range cmds {
		t.AppendRow(table.Row{cliName(c.Name), c.Summary, joinParams(c.Required), joinParams(c.Optional)})
	}
	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	t.SetStyle(s)
	t.Render()
}

func joinParams(ps []command.Param) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = "--" + flagName(p)
	}
	return strings.Join(names, " ")
}

// cliName maps registry names (least_touched) to subcommand names (least-touched).
func cliName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func flagName(p command.Param) string {
	return strings.ReplaceAll(string(p), "_", "-")
}

type engineFlags struct {
	key       string
	value     string
	namespace string
	expiresIn int
	count     int
}

func newEngineCmd(a *app, c command.Command) *cobra.Command {
	var f engineFlags
	cmd := &cobra.Command{
		Use:   cliName(c.Name),
		Short: c.Summary,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := f.toArgs(cmd)
			if err != nil {
				return err
			}
			engine, release, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			out, err := a.registry.Execute(cmd.Context(), engine, c.Name, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	accepted := append(append([]command.Param{}, c.Required...), c.Optional...)
	for _, p := range accepted {
		switch p {
		case command.ParamKey:
			cmd.Flags().StringVar(&f.key, flagName(p), "", "cache key")
		case command.ParamValue:
			cmd.Flags().StringVar(&f.value, flagName(p), "", "value as JSON")
		case command.ParamNamespace:
			cmd.Flags().StringVar(&f.namespace, flagName(p), "", "namespace")
		case command.ParamExpiresIn:
			cmd.Flags().IntVar(&f.expiresIn, flagName(p), 0, "TTL in seconds (0 uses the engine default)")
		case command.ParamCount:
			cmd.Flags().IntVar(&f.count, flagName(p), 10, "number of keys")
		}
	}
	for _, p := range c.Required {
		if p != command.ParamCount {
			_ = cmd.MarkFlagRequired(flagName(p))
		}
	}
	return cmd
}

func (f *engineFlags) toArgs(cmd *cobra.Command) (command.Args, error) {
	args := command.Args{
		Key:       f.key,
		Namespace: f.namespace,
		Count:     f.count,
	}
	if f.expiresIn > 0 {
		args.ExpiresIn = time.Duration(f.expiresIn) * time.Second
	}
	if cmd.Flags().Changed(flagName(command.ParamValue)) {
		v, err := core.DecodeValue([]byte(f.value))
		if err != nil {
			return args, fmt.Errorf("--value must be JSON: %w", err)
		}
		args.Value = v
	}
	return args, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
