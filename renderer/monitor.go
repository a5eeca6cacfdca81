// SPDX-License-Identifier: EPL-2.0

package renderer

import "github.com/viterin/vek/vek32"

// Monitor is an audio graph node that sums inputs onto outputs: input i
// goes to output i mod outputs, scaled by Level.
type Monitor struct {
	Level float32
}

func NewMonitor() *Monitor {
	return &Monitor{Level: 1}
}

func (m *Monitor) Process(in, out [][]float32) {
	if len(out) == 0 {
		return
	}

	for i, ch := range in {
		vek32.Add_Inplace(out[i%len(out)], ch)
	}
	if m.Level != 1 {
		for _, ch := range out {
			vek32.MulNumber_Inplace(ch, m.Level)
		}
	}
}
