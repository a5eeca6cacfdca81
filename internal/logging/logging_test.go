// SPDX-License-Identifier: EPL-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	defer func() {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	require.NoError(t, Configure("debug", true, &buf))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithFields(logrus.Fields{"function": "TestConfigure"}).Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "TestConfigure", entry["function"])

	require.NoError(t, Configure("", false, nil))
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	assert.Error(t, Configure("loud", false, nil))
}
