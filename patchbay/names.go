// SPDX-License-Identifier: EPL-2.0

package patchbay

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DefaultRemotePattern matches the send ports JackTrip registers for each
// connected hub client, e.g. "__ffff_192.168.10.101:send_1".
const DefaultRemotePattern = `^_{2}f{4}_([0-9]{1,3}\.?){4}:send_%d$`

// OutputPattern matches output i of the local client.
func OutputPattern(client string, i int) string {
	return fmt.Sprintf("^%s:out_%d$", regexp.QuoteMeta(client), i)
}

// RemotePattern fills the channel number into a remote port format.
func RemotePattern(format string, i int) string {
	return fmt.Sprintf(format, i)
}

// EndpointAddress extracts the network address embedded in a remote port
// name: the text before the ':' role delimiter, after its last '_'.
func EndpointAddress(port string) string {
	client, _, _ := strings.Cut(port, ":")
	if i := strings.LastIndexByte(client, '_'); i >= 0 {
		return client[i+1:]
	}

	return client
}

// UniqueEndpoints maps port names to addresses, dropping repeats and keeping
// first-seen order.
func UniqueEndpoints(ports []string) []string {
	seen := make(map[string]bool, len(ports))
	addrs := make([]string, 0, len(ports))
	for _, p := range ports {
		a := EndpointAddress(p)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		addrs = append(addrs, a)
	}

	return addrs
}

func lastOctet(addr string) (int, bool) {
	i := strings.LastIndexByte(addr, '.')
	n, err := strconv.Atoi(addr[i+1:])
	return n, err == nil
}

// SortEndpoints orders addresses by ascending final component. Addresses
// without a numeric final component sort last, by text.
func SortEndpoints(addrs []string) {
	slices.SortStableFunc(addrs, func(a, b string) int {
		na, oka := lastOctet(a)
		nb, okb := lastOctet(b)
		switch {
		case oka && okb:
			return na - nb
		case oka:
			return -1
		case okb:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}
