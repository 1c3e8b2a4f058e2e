package filesystem

import (
	"context"

	"github.com/wippyai/virtfs/wasi/preview2"
)

type PreopensHost struct {
	resources *preview2.ResourceTable
	preopens  []preview2.Preopen
}

func NewPreopensHost(resources *preview2.ResourceTable, preopens []preview2.Preopen) *PreopensHost {
	return &PreopensHost{
		resources: resources,
		preopens:  preopens,
	}
}

func (h *PreopensHost) Namespace() string {
	return "wasi:filesystem/preopens@0.2.3"
}

// PreopenDirectory is a descriptor handle paired with the guest path it is
// visible under.
type PreopenDirectory struct {
	Handle uint32
	Path   string
}

// GetDirectories returns a fresh descriptor for every preopen, in the order
// they were configured.
func (h *PreopensHost) GetDirectories(_ context.Context) []PreopenDirectory {
	result := make([]PreopenDirectory, 0, len(h.preopens))
	for _, p := range h.preopens {
		desc := preview2.NewDirDescriptor(p.Dir, preview2.DescriptorRead|preview2.DescriptorMutateDirectory)
		result = append(result, PreopenDirectory{
			Handle: h.resources.Add(desc),
			Path:   p.GuestPath,
		})
	}
	return result
}

func (h *PreopensHost) Register() map[string]any {
	return map[string]any{
		"get-directories": h.GetDirectories,
	}
}
