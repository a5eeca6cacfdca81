// SPDX-License-Identifier: EPL-2.0

// Package script runs Lua automation against the control surface. A script
// sees these globals:
//
//	add(x, y, file) -> id   place a source playing file
//	move(id, x, y)          move a source
//	remove(id)              remove a source
//	module(i, address)      assign module i to a renderer address
//	gain(g)                 set the mixer gain
//	start(), stop() -> ok   control playback
//	sleep(ms)               pause, honouring cancellation
package script

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ik5/wfspbx/spatial"
	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"
)

// Surface is the part of the controller scripts drive.
type Surface interface {
	Place(p spatial.Point, path string) (spatial.Node, error)
	Move(id int, p spatial.Point) error
	Remove(id int) error
	AssignModule(i int, addr string) error
	SetGain(g float32)
	Start()
	Stop() bool
}

type Runner struct {
	surface Surface
	name    string
}

func New(s Surface) *Runner {
	return &Runner{surface: s, name: "script"}
}

// RunFile runs the Lua file at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}

	return r.run(ctx, path, string(src))
}

// RunString runs a Lua chunk until it returns or ctx is done.
func (r *Runner) RunString(ctx context.Context, src string) error {
	return r.run(ctx, r.name, src)
}

func (r *Runner) run(ctx context.Context, name, src string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	for global, fn := range map[string]lua.LGFunction{
		"add":    r.add,
		"move":   r.move,
		"remove": r.remove,
		"module": r.module,
		"gain":   r.gain,
		"start":  r.start,
		"stop":   r.stop,
		"sleep":  r.sleep,
	} {
		L.SetGlobal(global, L.NewFunction(fn))
	}

	logrus.WithFields(logrus.Fields{
		"function": "Runner.run",
		"script":   name,
	}).Info("Running script")

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("script %s: %w", name, err)
	}

	return nil
}

func point(L *lua.LState, at int) spatial.Point {
	return spatial.Point{
		X: float64(L.CheckNumber(at)),
		Y: float64(L.CheckNumber(at + 1)),
	}
}

func (r *Runner) add(L *lua.LState) int {
	n, err := r.surface.Place(point(L, 1), L.CheckString(3))
	if err != nil {
		L.RaiseError("add: %v", err)
		return 0
	}
	L.Push(lua.LNumber(n.ID))

	return 1
}

func (r *Runner) move(L *lua.LState) int {
	if err := r.surface.Move(L.CheckInt(1), point(L, 2)); err != nil {
		L.RaiseError("move: %v", err)
	}

	return 0
}

func (r *Runner) remove(L *lua.LState) int {
	if err := r.surface.Remove(L.CheckInt(1)); err != nil {
		L.RaiseError("remove: %v", err)
	}

	return 0
}

func (r *Runner) module(L *lua.LState) int {
	if err := r.surface.AssignModule(L.CheckInt(1), L.CheckString(2)); err != nil {
		L.RaiseError("module: %v", err)
	}

	return 0
}

func (r *Runner) gain(L *lua.LState) int {
	r.surface.SetGain(float32(L.CheckNumber(1)))

	return 0
}

func (r *Runner) start(L *lua.LState) int {
	r.surface.Start()

	return 0
}

func (r *Runner) stop(L *lua.LState) int {
	L.Push(lua.LBool(r.surface.Stop()))

	return 1
}

func (r *Runner) sleep(L *lua.LState) int {
	d := time.Duration(L.CheckNumber(1) * lua.LNumber(time.Millisecond))
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-L.Context().Done():
		L.RaiseError("sleep: %v", L.Context().Err())
	case <-t.C:
	}

	return 0
}
