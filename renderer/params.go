// SPDX-License-Identifier: EPL-2.0

// Package renderer stands in for the wave field synthesis engine on a node:
// a keyed parameter table fed by the control dispatcher and a monitor node
// that passes the received channels to the outputs.
package renderer

import (
	"maps"
	"sync"

	"github.com/ik5/wfspbx/control"
	"github.com/sirupsen/logrus"
)

// ModuleIDKey is the parameter holding this node's module number.
const ModuleIDKey = control.ModuleIDKey

// Params is a concurrency safe parameter table. It satisfies
// control.ParamSetter.
type Params struct {
	mtx    sync.RWMutex
	values map[string]float64
	onSet  func(key string, value float64)
}

func NewParams() *Params {
	return &Params{values: make(map[string]float64)}
}

// OnSet installs a hook run after every change. It must not call SetParam.
func (p *Params) OnSet(fn func(key string, value float64)) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.onSet = fn
}

func (p *Params) SetParam(key string, value float64) {
	p.mtx.Lock()
	p.values[key] = value
	hook := p.onSet
	p.mtx.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Params.SetParam",
		"key":      key,
		"value":    value,
	}).Info("Setting parameter")

	if hook != nil {
		hook(key, value)
	}
}

func (p *Params) Param(key string) (float64, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	v, ok := p.values[key]
	return v, ok
}

// ModuleID returns the module number assigned to this node, or -1.
func (p *Params) ModuleID() int {
	v, ok := p.Param(ModuleIDKey)
	if !ok {
		return -1
	}

	return int(v)
}

func (p *Params) Snapshot() map[string]float64 {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	return maps.Clone(p.values)
}
