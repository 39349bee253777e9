// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	// Registers the gg GPU accelerator for the composition path.
	_ "github.com/gogpu/gg/gpu"

	"github.com/vektorui/shell/ui"
)

// newGPUShell builds the wgpu backend.
func newGPUShell(o *Options, engine ui.Engine, creator ui.AppCreator) (Shell, error) {
	p, err := newWGPUPainter(Logger(), o)
	if err != nil {
		return nil, err
	}
	return newBackendShell(o, engine, creator, p), nil
}
