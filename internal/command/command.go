package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/mgpai22/kaal/internal/audioview"
	"github.com/mgpai22/kaal/internal/logging"
	"github.com/mgpai22/kaal/internal/playback"
	"github.com/mgpai22/kaal/internal/subtitle"
	"github.com/mgpai22/kaal/internal/timecode"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrDisabled       = errors.New("command is not available right now")
)

// everything a command can act on
type Env struct {
	Playback  *playback.Controller
	Subtitles *subtitle.Track
	Audio     *audioview.View
	Logger    *logging.Logger

	// defaults for seek commands
	SeekMode    timecode.Mode
	PreciseSeek bool
}

func (e *Env) Session() *playback.Session {
	return e.Playback.Session()
}

// a single invocation with its flags already bound
type Command interface {
	Enabled(env *Env) bool
	Run(ctx context.Context, env *Env) error
}

// Spec describes a user-invokable command. New declares the command's flags
// on fs and returns a fresh Command bound to them.
type Spec struct {
	Names []string
	Help  string
	New   func(fs *pflag.FlagSet) Command
}

type Registry struct {
	specs  []*Spec
	byName map[string]*Spec
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Spec)}
}

func (r *Registry) Register(spec *Spec) error {
	if len(spec.Names) == 0 {
		return fmt.Errorf("command has no names")
	}
	if spec.New == nil {
		return fmt.Errorf("command %q has no constructor", spec.Names[0])
	}
	for _, name := range spec.Names {
		if _, ok := r.byName[name]; ok {
			return fmt.Errorf("command %q already registered", name)
		}
	}
	for _, name := range spec.Names {
		r.byName[name] = spec
	}
	r.specs = append(r.specs, spec)
	return nil
}

func (r *Registry) Lookup(name string) (*Spec, bool) {
	spec, ok := r.byName[name]
	return spec, ok
}

// primary names of all registered commands, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for _, spec := range r.specs {
		names = append(names, spec.Names[0])
	}
	sort.Strings(names)
	return names
}

// Usage renders the flag help of one command
func (r *Registry) Usage(name string) (string, error) {
	spec, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	spec.New(fs)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s - %s\n", strings.Join(spec.Names, ", "), spec.Help))
	sb.WriteString(fs.FlagUsages())
	return sb.String(), nil
}

// Dispatch parses and runs a command line such as "seek -p +1f --precise"
func (r *Registry) Dispatch(ctx context.Context, env *Env, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}

	name := args[0]
	spec, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd := spec.New(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	logger := logging.OrNop(env.Logger).With(
		"command", name,
		"invocation", uuid.NewString(),
	)

	if !cmd.Enabled(env) {
		logger.Debugw("Command disabled")
		return fmt.Errorf("%s: %w", name, ErrDisabled)
	}

	logger.Debugw("Running command", "args", args[1:])
	if err := cmd.Run(ctx, env); err != nil {
		logger.Warnw("Command failed", "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
