// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML description of a deployment: the control
// multicast group, the mixer and speaker layout, the patch bay naming and
// the renderer node link.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Control  Control  `yaml:"control"`
	Audio    Audio    `yaml:"audio"`
	Layout   Layout   `yaml:"layout"`
	PatchBay PatchBay `yaml:"patchbay"`
	Node     Node     `yaml:"node"`
	Log      Log      `yaml:"log"`
}

type Control struct {
	Group     string `yaml:"group"`
	Port      int    `yaml:"port"`
	Bind      string `yaml:"bind"`
	Interface string `yaml:"interface"`
	TTL       int    `yaml:"ttl"`
	Loopback  bool   `yaml:"loopback"`
}

type Audio struct {
	Channels    int           `yaml:"channels"`
	SampleRate  int           `yaml:"sample_rate"`
	BlockSize   int           `yaml:"block_size"`
	MaxSources  int           `yaml:"max_sources"`
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

type Layout struct {
	Speakers          int `yaml:"speakers"`
	SpeakersPerModule int `yaml:"speakers_per_module"`
}

// Modules is the number of physical speaker modules.
func (l Layout) Modules() int {
	if l.SpeakersPerModule <= 0 {
		return 0
	}

	return l.Speakers / l.SpeakersPerModule
}

type PatchBay struct {
	ClientName    string `yaml:"client_name"`
	RemotePattern string `yaml:"remote_pattern"`
}

type Node struct {
	Channels       int           `yaml:"channels"`
	Server         string        `yaml:"server"`
	ServerPort     int           `yaml:"server_port"`
	LocalUDPPort   int           `yaml:"local_udp_port"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	StatsInterval  time.Duration `yaml:"stats_interval"`
	LocalAddress   string        `yaml:"local_address"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the stock two-module deployment.
func Default() Config {
	return Config{
		Control: Control{
			Group: "230.0.0.20",
			Port:  41814,
			Bind:  "192.168.10.10:8888",
			TTL:   1,
		},
		Audio: Audio{
			Channels:    2,
			SampleRate:  44100,
			BlockSize:   128,
			StopTimeout: time.Second,
		},
		Layout: Layout{
			Speakers:          16,
			SpeakersPerModule: 8,
		},
		PatchBay: PatchBay{
			ClientName:    "wfs",
			RemotePattern: `^_{2}f{4}_([0-9]{1,3}\.?){4}:send_%d$`,
		},
		Node: Node{
			Channels:       2,
			Server:         "192.168.10.10",
			ServerPort:     4464,
			LocalUDPPort:   8888,
			ConnectTimeout: 2500 * time.Millisecond,
			IdleTimeout:    5 * time.Second,
			StatsInterval:  5 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Parse(bytes.NewReader(nil))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return Parse(bytes.NewReader(data))
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Audio.MaxSources == 0 {
		cfg.Audio.MaxSources = cfg.Audio.Channels
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	group, err := netip.ParseAddr(c.Control.Group)
	switch {
	case err != nil:
		fail("control.group %q: %v", c.Control.Group, err)
	case !group.Is4() || !group.IsMulticast():
		fail("control.group %s is not an IPv4 multicast address", group)
	}
	if c.Control.Port <= 0 || c.Control.Port > 0xffff {
		fail("control.port %d out of range", c.Control.Port)
	}

	if c.Audio.Channels <= 0 {
		fail("audio.channels must be positive")
	}
	if c.Audio.SampleRate <= 0 {
		fail("audio.sample_rate must be positive")
	}
	if c.Audio.BlockSize <= 0 {
		fail("audio.block_size must be positive")
	}
	if c.Audio.MaxSources < 0 {
		fail("audio.max_sources must not be negative")
	}

	if c.Layout.Modules() < 1 {
		fail("layout gives %d modules", c.Layout.Modules())
	}

	if c.PatchBay.ClientName == "" {
		fail("patchbay.client_name is empty")
	}
	if strings.Count(c.PatchBay.RemotePattern, "%d") != 1 {
		fail("patchbay.remote_pattern must contain exactly one %%d")
	}

	if c.Node.Channels <= 0 {
		fail("node.channels must be positive")
	}
	if c.Node.ConnectTimeout <= 0 {
		fail("node.connect_timeout must be positive")
	}
	if c.Node.LocalAddress != "" {
		if _, err := netip.ParseAddr(c.Node.LocalAddress); err != nil {
			fail("node.local_address: %v", err)
		}
	}

	return errors.Join(errs...)
}
