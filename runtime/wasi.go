package runtime

import (
	"fmt"

	"github.com/wippyai/virtfs/wasi/preview2"
	"github.com/wippyai/virtfs/wasi/preview2/clocks"
	"github.com/wippyai/virtfs/wasi/preview2/filesystem"
	"github.com/wippyai/virtfs/wasi/preview2/io"
)

// RegisterWASI registers the preview2 host implementations backed by w.
func (r *Runtime) RegisterWASI(w *preview2.WASI) error {
	resources := w.Resources()
	var hosts []Host
	for _, h := range io.NewHost(resources).All() {
		hosts = append(hosts, h)
	}
	hosts = append(hosts,
		clocks.NewMonotonicClockHost(resources, w.Clock()),
		clocks.NewWallClockHost(w.Clock()),
		filesystem.NewTypesHost(resources),
		filesystem.NewPreopensHost(resources, w.Preopens()),
	)
	for _, h := range hosts {
		if err := r.RegisterHost(h); err != nil {
			return fmt.Errorf("register WASI: %w", err)
		}
	}
	return nil
}
