// SPDX-License-Identifier: EPL-2.0

// Package controller wires the desktop side together: placing a source
// loads its file into the mixer, removing it releases the mixer source, and
// module assignments and patch bay refreshes go through the shared store.
package controller

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"sync"

	"github.com/ik5/wfspbx/audio"
	"github.com/ik5/wfspbx/control"
	"github.com/ik5/wfspbx/mixer"
	"github.com/ik5/wfspbx/patchbay"
	"github.com/ik5/wfspbx/spatial"
	"github.com/ik5/wfspbx/store"
	"github.com/sirupsen/logrus"
)

var (
	ErrModuleRange    = errors.New("module index out of range")
	ErrInvalidAddress = errors.New("invalid module address")
	ErrNoFile         = errors.New("no audio file chosen")
)

// Loader decodes an audio file into a clip at the given sample rate.
type Loader interface {
	Open(path string, rate int) (*audio.Clip, error)
}

// Chooser picks the file for a node that was added without one. Returning
// false cancels the addition.
type Chooser func(n spatial.Node) (path string, ok bool)

type Config struct {
	SampleRate int
	Modules    int
}

// Deps are the collaborators a Controller drives. PatchBay, Sender and
// Chooser may be nil.
type Deps struct {
	Store    *store.Store
	Model    *spatial.Model
	Mixer    *mixer.Mixer
	Loader   Loader
	Chooser  Chooser
	PatchBay *patchbay.PatchBay
	Sender   *control.Sender
}

type Controller struct {
	cfg  Config
	deps Deps

	place sync.Mutex // serialises Place

	mtx        sync.Mutex
	next       string
	hasNext    bool
	addErr     error
	selections []string
	endpoints  []string

	cancels []func()
}

func New(cfg Config, deps Deps) *Controller {
	c := &Controller{
		cfg:        cfg,
		deps:       deps,
		selections: make([]string, cfg.Modules),
	}
	c.cancels = append(c.cancels,
		deps.Model.OnAdded(c.added),
		deps.Model.OnRemoved(c.removed),
	)

	return c
}

// Place adds a node at p playing path. On failure the node is rolled back
// and the error returned.
func (c *Controller) Place(p spatial.Point, path string) (spatial.Node, error) {
	c.place.Lock()
	defer c.place.Unlock()

	c.mtx.Lock()
	c.next, c.hasNext, c.addErr = path, true, nil
	c.mtx.Unlock()

	n, err := c.deps.Model.AddNode(p)

	c.mtx.Lock()
	addErr := c.addErr
	c.next, c.hasNext, c.addErr = "", false, nil
	c.mtx.Unlock()

	if err != nil {
		return spatial.Node{}, err
	}
	if addErr != nil {
		return spatial.Node{}, addErr
	}

	return n, nil
}

func (c *Controller) Move(id int, p spatial.Point) error {
	return c.deps.Model.MoveNode(id, p)
}

func (c *Controller) Remove(id int) error {
	return c.deps.Model.RemoveNode(id)
}

// Clear removes every node.
func (c *Controller) Clear() {
	c.deps.Model.RemoveAll()
}

func (c *Controller) added(n spatial.Node) {
	c.mtx.Lock()
	path, ok := c.next, c.hasNext
	c.hasNext = false
	c.mtx.Unlock()

	if !ok && c.deps.Chooser != nil {
		path, ok = c.deps.Chooser(n)
	}
	if !ok || path == "" {
		c.rollback(n, ErrNoFile)
		return
	}

	if !c.deps.Mixer.CanAddSource() {
		c.rollback(n, mixer.ErrMixerFull)
		return
	}

	clip, err := c.deps.Loader.Open(path, c.cfg.SampleRate)
	if err != nil {
		c.rollback(n, err)
		return
	}
	if err := c.deps.Mixer.AddSource(n.ID, clip); err != nil {
		c.rollback(n, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "Controller.added",
		"id":       n.ID,
		"file":     path,
	}).Info("Source loaded")

	c.deps.Mixer.Start()
}

func (c *Controller) rollback(n spatial.Node, err error) {
	logrus.WithFields(logrus.Fields{
		"function": "Controller.added",
		"id":       n.ID,
		"error":    err.Error(),
	}).Warn("Source not added, rolling back")

	c.deps.Model.Discard(n.ID)

	c.mtx.Lock()
	c.addErr = fmt.Errorf("source %d: %w", n.ID, err)
	c.mtx.Unlock()
}

func (c *Controller) removed(n spatial.Node) {
	c.deps.Mixer.RemoveSource(n.ID)
}

// AssignModule points module i at a renderer address.
func (c *Controller) AssignModule(i int, addr string) error {
	if i < 0 || i >= c.cfg.Modules {
		return fmt.Errorf("%w: %d", ErrModuleRange, i)
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil || !ip.Is4() {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	c.mtx.Lock()
	c.selections[i] = ip.String()
	c.mtx.Unlock()

	c.deps.Store.SetString(store.ModulePath(i), ip.String())

	return nil
}

// Selections returns the address chosen for each module; empty when none.
func (c *Controller) Selections() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return slices.Clone(c.selections)
}

// Endpoints returns the renderer addresses found by the last Refresh.
func (c *Controller) Endpoints() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return slices.Clone(c.endpoints)
}

// Refresh reconnects the control sender, rewires the patch bay and updates
// the endpoint list. A module keeps its selection only while its address is
// still listed; every kept selection is sent again so renderers that joined
// since, or assignments made while disconnected, reach the wire.
func (c *Controller) Refresh() error {
	var errs []error

	if s := c.deps.Sender; s != nil {
		if err := s.Connect(); err != nil {
			errs = append(errs, err)
		}
	}

	if pb := c.deps.PatchBay; pb != nil {
		if err := pb.Refresh(); err != nil {
			errs = append(errs, err)
		}
		endpoints := pb.Endpoints()

		c.mtx.Lock()
		c.endpoints = endpoints
		for i, sel := range c.selections {
			if sel != "" && !slices.Contains(endpoints, sel) {
				c.selections[i] = ""
			}
		}
		c.mtx.Unlock()
	}

	for i, sel := range c.Selections() {
		if sel != "" {
			c.deps.Store.SetString(store.ModulePath(i), sel)
		}
	}

	return errors.Join(errs...)
}

// SetGain sets the mixer gain, clamped to [0, mixer.MaxGain].
func (c *Controller) SetGain(g float32) {
	c.deps.Mixer.SetGain(g)
}

func (c *Controller) Start() {
	c.deps.Mixer.Start()
}

func (c *Controller) Stop() bool {
	return c.deps.Mixer.Stop()
}

// Close stops playback and releases every collaborator.
func (c *Controller) Close() error {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil

	c.deps.Mixer.Stop()
	c.deps.Mixer.Release()

	var errs []error
	if s := c.deps.Sender; s != nil {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if pb := c.deps.PatchBay; pb != nil {
		if err := pb.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
