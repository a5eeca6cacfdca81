// SPDX-License-Identifier: EPL-2.0

// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Configure sets the level and formatter of the standard logger. An empty
// level keeps Info.
func Configure(level string, json bool, out io.Writer) error {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}
	logrus.SetLevel(lvl)

	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	if out != nil {
		logrus.SetOutput(out)
	}

	return nil
}
