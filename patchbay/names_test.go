// SPDX-License-Identifier: EPL-2.0

package patchbay

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointAddress(t *testing.T) {
	tests := map[string]string{
		"__ffff_192.168.10.101:send_1": "192.168.10.101",
		"__ffff_10.0.0.7:receive_2":    "10.0.0.7",
		"192.168.1.3:send_1":           "192.168.1.3",
		"__ffff_192.168.10.101":        "192.168.10.101",
		"system:playback_1":            "system",
	}

	for port, want := range tests {
		assert.Equal(t, want, EndpointAddress(port), port)
	}
}

func TestRemotePattern_MatchesJackTripPorts(t *testing.T) {
	re := regexp.MustCompile(RemotePattern(DefaultRemotePattern, 2))

	assert.True(t, re.MatchString("__ffff_192.168.10.101:send_2"))
	assert.False(t, re.MatchString("__ffff_192.168.10.101:send_1"))
	assert.False(t, re.MatchString("__ffff_192.168.10.101:send_21"))
	assert.False(t, re.MatchString("__ffff_192.168.10.101:receive_2"))
	assert.False(t, re.MatchString("wfs:out_2"))
}

func TestOutputPattern_QuotesClientName(t *testing.T) {
	re := regexp.MustCompile(OutputPattern("wfs.ctl", 3))

	assert.True(t, re.MatchString("wfs.ctl:out_3"))
	assert.False(t, re.MatchString("wfsXctl:out_3"))
	assert.False(t, re.MatchString("wfs.ctl:out_30"))
}

func TestUniqueEndpoints(t *testing.T) {
	ports := []string{
		"__ffff_192.168.10.103:send_1",
		"__ffff_192.168.10.101:send_1",
		"__ffff_192.168.10.103:send_1",
	}

	assert.Equal(t, []string{"192.168.10.103", "192.168.10.101"}, UniqueEndpoints(ports))
}

func TestSortEndpoints_AscendingByFinalOctet(t *testing.T) {
	var ports []string
	for _, octet := range []int{120, 9, 101, 33, 2} {
		ports = append(ports, fmt.Sprintf("__ffff_192.168.10.%d:send_1", octet))
	}

	addrs := UniqueEndpoints(ports)
	SortEndpoints(addrs)

	assert.Equal(t, []string{
		"192.168.10.2",
		"192.168.10.9",
		"192.168.10.33",
		"192.168.10.101",
		"192.168.10.120",
	}, addrs)
}

func TestSortEndpoints_NonNumericLast(t *testing.T) {
	addrs := []string{"zeta", "10.0.0.5", "alpha", "10.0.0.1"}
	SortEndpoints(addrs)

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.5", "alpha", "zeta"}, addrs)
}
