// SPDX-License-Identifier: EPL-2.0

package patchbay

import (
	"fmt"

	"github.com/ik5/wfspbx/internal/audiograph"
	"github.com/sirupsen/logrus"
)

// Autopatch builds the renderer's fixed topology: received channel i of
// link feeds renderer input i and is echoed back into link input i.
func Autopatch(g *audiograph.Graph, link, renderer audiograph.NodeID, channels int) error {
	for i := range channels {
		if err := g.Connect(link, i, renderer, i); err != nil {
			return fmt.Errorf("patch link %d to renderer: %w", i, err)
		}
		if err := g.Connect(link, i, link, i); err != nil {
			return fmt.Errorf("patch link %d loopback: %w", i, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "Autopatch",
		"channels": channels,
	}).Info("Renderer audio graph patched")

	return nil
}
