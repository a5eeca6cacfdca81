// SPDX-License-Identifier: EPL-2.0

package patchbay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lspFixture = `system:capture_1
	properties: output,physical,terminal,
system:playback_1
	properties: input,physical,terminal,
wfs:out_1
	properties: output,
wfs:out_2
	properties: output,
__ffff_192.168.10.102:send_1
	properties: input,
__ffff_192.168.10.102:receive_1
	properties: output,
__ffff_192.168.10.101:send_1
	properties: input,
`

type fakeJack struct {
	calls [][]string
	fail  bool
}

func (f *fakeJack) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.fail {
		return []byte("Cannot connect to server socket"), errors.New("exit status 1")
	}

	switch name {
	case "jack_lsp":
		return []byte(lspFixture), nil
	case "jack_connect":
		if args[1] == "__ffff_192.168.10.101:send_1" {
			return []byte("already connected"), errors.New("exit status 1")
		}
		return nil, nil
	}

	return nil, errors.New("unexpected command")
}

func TestParseJackLsp(t *testing.T) {
	ports := parseJackLsp([]byte(lspFixture))
	require.Len(t, ports, 7)

	assert.Equal(t, jackPort{name: "system:capture_1", dir: Output}, ports[0])
	assert.Equal(t, jackPort{name: "system:playback_1", dir: Input}, ports[1])
	assert.Equal(t, jackPort{name: "__ffff_192.168.10.101:send_1", dir: Input}, ports[6])
}

func TestJackCLI_Ports(t *testing.T) {
	fake := &fakeJack{}
	j, err := openJack(fake.run)
	require.NoError(t, err)

	ins, err := j.Ports(RemotePattern(DefaultRemotePattern, 1), Input)
	require.NoError(t, err)
	assert.Equal(t, []string{"__ffff_192.168.10.102:send_1", "__ffff_192.168.10.101:send_1"}, ins)

	outs, err := j.Ports(OutputPattern("wfs", 2), Output)
	require.NoError(t, err)
	assert.Equal(t, []string{"wfs:out_2"}, outs)
}

func TestJackCLI_ConnectAll(t *testing.T) {
	fake := &fakeJack{}
	j, err := openJack(fake.run)
	require.NoError(t, err)

	iterations, connections, err := ConnectAll(j, "wfs", DefaultRemotePattern)
	require.NoError(t, err)
	assert.Equal(t, 3, iterations)
	// out_1 reaches both hosts; the existing connection counts as made
	assert.Equal(t, 2, connections)

	var connects []string
	for _, c := range fake.calls {
		if c[0] == "jack_connect" {
			connects = append(connects, strings.Join(c[1:], " -> "))
		}
	}
	assert.Equal(t, []string{
		"wfs:out_1 -> __ffff_192.168.10.102:send_1",
		"wfs:out_1 -> __ffff_192.168.10.101:send_1",
	}, connects)
}

func TestOpenJack_NoServer(t *testing.T) {
	fake := &fakeJack{fail: true}
	_, err := openJack(fake.run)
	assert.Error(t, err)
}
