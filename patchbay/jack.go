// SPDX-License-Identifier: EPL-2.0

package patchbay

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// JackCLI drives a running JACK server through the jack_lsp and
// jack_connect tools. It never starts a server.
type JackCLI struct {
	run     Runner
	timeout time.Duration
}

// OpenJack returns an Opener that fails when no JACK server answers.
func OpenJack() Opener {
	return func() (Graph, error) {
		return openJack(execRunner)
	}
}

func openJack(run Runner) (*JackCLI, error) {
	j := &JackCLI{run: run, timeout: 2 * time.Second}
	if _, err := j.list(); err != nil {
		return nil, err
	}

	return j, nil
}

type jackPort struct {
	name string
	dir  Direction
}

func (j *JackCLI) list() ([]jackPort, error) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	out, err := j.run(ctx, "jack_lsp", "-p")
	if err != nil {
		return nil, fmt.Errorf("jack_lsp: %w: %s", err, bytes.TrimSpace(out))
	}

	return parseJackLsp(out), nil
}

// parseJackLsp reads `jack_lsp -p` output: each port name is followed by an
// indented "properties:" line.
func parseJackLsp(out []byte) []jackPort {
	var ports []jackPort
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		props, ok := strings.CutPrefix(trimmed, "properties:")
		if !ok || line == trimmed {
			ports = append(ports, jackPort{name: trimmed})
			continue
		}
		if len(ports) == 0 {
			continue
		}

		for _, p := range strings.Split(props, ",") {
			switch strings.TrimSpace(p) {
			case "input":
				ports[len(ports)-1].dir = Input
			case "output":
				ports[len(ports)-1].dir = Output
			}
		}
	}

	return ports
}

func (j *JackCLI) Ports(pattern string, dir Direction) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("port pattern: %w", err)
	}

	ports, err := j.list()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, p := range ports {
		if p.dir == dir && re.MatchString(p.name) {
			names = append(names, p.name)
		}
	}

	return names, nil
}

func (j *JackCLI) Connect(src, dst string) error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	out, err := j.run(ctx, "jack_connect", src, dst)
	if err != nil {
		if bytes.Contains(bytes.ToLower(out), []byte("already")) {
			return nil
		}
		return fmt.Errorf("jack_connect %s %s: %w: %s", src, dst, err, bytes.TrimSpace(out))
	}

	return nil
}

func (j *JackCLI) Close() error { return nil }
