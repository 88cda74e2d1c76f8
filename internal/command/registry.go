// Package command holds the closed set of cache engine commands, keyed by name.
// The registry is built once at startup and handed to whichever transport drives the engine.
package command

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cachegate/cachegate/internal/core"
	apperrors "github.com/cachegate/cachegate/internal/errors"
)

// Param names an input a command consumes.
type Param string

const (
	ParamKey       Param = "key"
	ParamValue     Param = "value"
	ParamNamespace Param = "namespace"
	ParamExpiresIn Param = "expires_in"
	ParamCount     Param = "count"
)

// Args carries command inputs. Unused fields are ignored by commands that do not declare them.
type Args struct {
	Key       string
	Value     any
	Namespace string
	ExpiresIn time.Duration
	Count     int
}

// Handler executes one command against an engine.
type Handler func(ctx context.Context, e core.Engine, a Args) (any, error)

// Command describes a registered command.
type Command struct {
	Name    string
	Summary string
	// Required inputs are validated before Run is called.
	Required []Param
	// Optional inputs are accepted but may be zero.
	Optional []Param
	Run      Handler
}

// Registry maps command names to commands. It is immutable after construction.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns a registry holding every engine command.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]Command)}
	for _, c := range builtins() {
		r.commands[c.Name] = c
	}
	return r
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute validates args and runs the named command.
func (r *Registry) Execute(ctx context.Context, e core.Engine, name string, a Args) (any, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("unknown command: %s", name))
	}
	for _, p := range c.Required {
		if err := requireParam(p, a); err != nil {
			return nil, err
		}
	}
	return c.Run(ctx, e, a)
}

func requireParam(p Param, a Args) error {
	missing := false
	switch p {
	case ParamKey:
		missing = a.Key == ""
	case ParamValue:
		missing = a.Value == nil
	case ParamNamespace:
		missing = a.Namespace == ""
	case ParamCount:
		missing = a.Count <= 0
	}
	if missing {
		return apperrors.ValidationField(string(p), string(p)+" is required")
	}
	return nil
}

func builtins() []Command {
	return []Command{
		{
			Name:     "read",
			Summary:  "Read the value stored under a key",
			Required: []Param{ParamKey},
			Optional: []Param{ParamNamespace},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				v, ok, err := e.Read(ctx, a.Key, a.Namespace)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, apperrors.NotFound("not found")
				}
				return v, nil
			},
		},
		{
			Name:     "write",
			Summary:  "Store a value under a key",
			Required: []Param{ParamKey, ParamValue},
			Optional: []Param{ParamNamespace, ParamExpiresIn},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				err := e.Write(ctx, core.WriteRequest{Key: a.Key, Value: a.Value, ExpiresIn: a.ExpiresIn, Namespace: a.Namespace})
				if err != nil {
					return nil, err
				}
				return true, nil
			},
		},
		{
			Name:     "delete",
			Summary:  "Delete a key",
			Required: []Param{ParamKey},
			Optional: []Param{ParamNamespace},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				return e.Delete(ctx, a.Key, a.Namespace)
			},
		},
		{
			Name:     "exists",
			Summary:  "Report whether a key is stored",
			Required: []Param{ParamKey},
			Optional: []Param{ParamNamespace},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				return e.Exists(ctx, a.Key, a.Namespace)
			},
		},
		{
			Name:     "inspect",
			Summary:  "Show metadata for a key",
			Required: []Param{ParamKey},
			Optional: []Param{ParamNamespace},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				info, err := e.Inspect(ctx, a.Key, a.Namespace)
				if err != nil {
					return nil, err
				}
				if info == nil {
					return nil, apperrors.NotFound("not found")
				}
				return info, nil
			},
		},
		{
			Name:     "keys",
			Summary:  "List the keys of a namespace",
			Required: []Param{ParamNamespace},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				return e.Keys(ctx, a.Namespace)
			},
		},
		{
			Name:     "clear_namespace",
			Summary:  "Remove every key of a namespace",
			Required: []Param{ParamNamespace},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				if err := e.ClearNamespace(ctx, a.Namespace); err != nil {
					return nil, err
				}
				return true, nil
			},
		},
		{
			Name:     "least_touched",
			Summary:  "List the least accessed keys",
			Required: []Param{ParamCount},
			Run: func(ctx context.Context, e core.Engine, a Args) (any, error) {
				return e.LeastTouched(ctx, a.Count)
			},
		},
		{
			Name:    "all_keys",
			Summary: "List every key in every namespace",
			Run: func(ctx context.Context, e core.Engine, _ Args) (any, error) {
				return e.AllKeys(ctx)
			},
		},
		{
			Name:    "metrics",
			Summary: "Show engine counters",
			Run: func(ctx context.Context, e core.Engine, _ Args) (any, error) {
				return e.Metrics(ctx)
			},
		},
		{
			Name:    "reset_metrics",
			Summary: "Zero the engine counters",
			Run: func(ctx context.Context, e core.Engine, _ Args) (any, error) {
				if err := e.ResetMetrics(ctx); err != nil {
					return nil, err
				}
				return true, nil
			},
		},
		{
			Name:    "reset",
			Summary: "Remove all cache data",
			Run: func(ctx context.Context, e core.Engine, _ Args) (any, error) {
				if err := e.Reset(ctx); err != nil {
					return nil, err
				}
				return true, nil
			},
		},
	}
}
