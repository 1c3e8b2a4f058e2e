package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

const wasiModuleName = wasi_snapshot_preview1.ModuleName

const (
	errnoBadf = 8          // EBADF
	invalidFD = 0xFFFFFFFF // -1 as uint32
)

// adapterShim is a helper the component-model preview1 adapter imports from
// wasi_snapshot_preview1 next to the standard functions.
type adapterShim struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
	fn      api.GoModuleFunc
}

var i32 = []api.ValueType{api.ValueTypeI32}

var adapterShims = []adapterShim{
	{
		name: "reset_adapter_state",
		fn:   func(context.Context, api.Module, []uint64) {},
	},
	{
		name:    "adapter_close_badfd",
		params:  i32,
		results: i32,
		fn:      func(_ context.Context, _ api.Module, stack []uint64) { stack[0] = errnoBadf },
	},
	{
		name:    "adapter_open_badfd",
		params:  i32,
		results: i32,
		fn:      func(_ context.Context, _ api.Module, stack []uint64) { stack[0] = invalidFD },
	},
}

// InstantiateWASIWithAdapter instantiates wasi_snapshot_preview1 with the
// adapter shims. Filesystem calls reach whatever FS the guest's module
// config mounts.
func InstantiateWASIWithAdapter(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(wasiModuleName)
	wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(builder)

	for _, s := range adapterShims {
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(s.fn, s.params, s.results).
			Export(s.name)
	}
	return builder.Instantiate(ctx)
}
