// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// RaiseBuiltin is the command examples use to raise an exception:
//
//	raise ValueError "bad input"
const RaiseBuiltin = "raise"

// interpreterVars are set by the interpreter on every reset and are never
// written back into a Namespace.
var interpreterVars = map[string]bool{
	"HOME":   true,
	"PWD":    true,
	"OLDPWD": true,
	"IFS":    true,
	"OPTIND": true,
	"UID":    true,
	"EUID":   true,
	"GID":    true,
}

// Executor runs compiled programs against a Namespace.
type Executor struct {
	// Env is the base environment beneath every namespace. Nil means empty.
	Env expand.Environ
	// Dir is the working directory used when the namespace has none.
	Dir string
}

// NewExecutor returns an executor over the given base environment pairs
// ("NAME=value").
func NewExecutor(dir string, env ...string) *Executor {
	return &Executor{Env: expand.ListEnviron(env...), Dir: dir}
}

// Exec runs prog in ns, writing stdout and stderr to out. Variables, functions
// and the working directory left behind by the program are written back into
// ns, even when the program raised.
//
// The returned error is nil, a *RaisedError, or a context error when ctx was
// cancelled.
func (e *Executor) Exec(ctx context.Context, prog *Program, ns *Namespace, out io.Writer) error {
	env := layeredEnviron{top: ns, base: e.base()}
	dir := ns.Dir()
	if dir == "" {
		dir = e.Dir
	}

	runner, err := interp.New(
		interp.Env(env),
		interp.Dir(dir),
		interp.StdIO(nil, out, out),
		interp.Interactive(prog.Mode == ModeInteractive),
		interp.ExecHandlers(raiseMiddleware),
	)
	if err != nil {
		return &RaisedError{Kind: KindRuntimeError, Message: err.Error(), Err: err}
	}
	// Reset drops functions, so restore them afterwards.
	runner.Reset()
	runner.Funcs = maps.Clone(ns.funcs)

	runErr := e.run(ctx, runner, prog, out)
	e.capture(runner, env, ns)
	return runErr
}

func (e *Executor) run(ctx context.Context, runner *interp.Runner, prog *Program, out io.Writer) error {
	if prog.Mode == ModeModule {
		err := runner.Run(ctx, prog.file)
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &RaisedError{Kind: KindExitError, Message: status.Error(), Err: err}
		}
		return classify(ctx, err)
	}

	for _, stmt := range prog.file.Stmts {
		err := runner.Run(ctx, stmt)
		var status interp.ExitStatus
		switch {
		case err == nil:
		case errors.As(err, &status):
			fmt.Fprintf(out, "%s\n", status.Error())
		default:
			return classify(ctx, err)
		}
		if runner.Exited() {
			break
		}
	}
	return nil
}

// capture writes the interpreter's global state back into ns.
func (e *Executor) capture(runner *interp.Runner, before expand.Environ, ns *Namespace) {
	for name, vr := range runner.Vars {
		if interpreterVars[name] || vr.Local {
			continue
		}
		if !vr.IsSet() {
			ns.Delete(name)
			continue
		}
		if sameVariable(vr, before.Get(name)) {
			continue
		}
		_ = ns.Set(name, vr)
	}
	clear(ns.funcs)
	maps.Copy(ns.funcs, runner.Funcs)
	ns.SetDir(runner.Dir)
}

func (e *Executor) base() expand.Environ {
	if e.Env == nil {
		return expand.ListEnviron()
	}
	return e.Env
}

func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	var raised *RaisedError
	if errors.As(err, &raised) {
		return raised
	}
	return &RaisedError{Kind: KindRuntimeError, Message: err.Error(), Err: err}
}

func raiseMiddleware(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 || args[0] != RaiseBuiltin {
			return next(ctx, args)
		}
		if len(args) < 2 {
			return &RaisedError{Kind: KindRuntimeError, Message: "raise: missing exception kind"}
		}
		return &RaisedError{Kind: args[1], Message: strings.Join(args[2:], " ")}
	}
}
