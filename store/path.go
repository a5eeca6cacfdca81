// SPDX-License-Identifier: EPL-2.0

package store

import (
	"strconv"
	"strings"
)

// Axis names one coordinate of a source position.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Address namespaces of the control protocol.
const (
	SourceNamespace = "/source/"
	ModuleNamespace = "/module/"
)

// SourcePath is the property holding one coordinate of source id.
func SourcePath(id int, axis Axis) string {
	return SourceNamespace + strconv.Itoa(id) + "/" + string(axis)
}

// ModulePath is the property holding the network address of module index.
func ModulePath(index int) string {
	return ModuleNamespace + strconv.Itoa(index)
}

// IsModulePath reports whether path lies in the module assignment namespace.
func IsModulePath(path string) bool {
	return strings.Contains(path, strings.TrimSuffix(ModuleNamespace, "/"))
}
