package io

import (
	"context"

	"github.com/wippyai/virtfs/wasi/preview2"
)

const unknownError = "unknown error"

// ErrorHost serves wasi:io/error. Stream failures from filesystem
// descriptors carry the filesystem error, so to-debug-string names the
// operation and path that failed.
type ErrorHost struct {
	resources *preview2.ResourceTable
}

func NewErrorHost(resources *preview2.ResourceTable) *ErrorHost {
	return &ErrorHost{resources: resources}
}

func (h *ErrorHost) Namespace() string {
	return "wasi:io/error@0.2.8"
}

func (h *ErrorHost) MethodErrorToDebugString(_ context.Context, self uint32) string {
	r, ok := h.resources.Get(self)
	if !ok {
		return unknownError
	}
	e, ok := r.(*preview2.ErrorResource)
	if !ok {
		return unknownError
	}
	return e.ToDebugString()
}

func (h *ErrorHost) ResourceDropError(_ context.Context, self uint32) {
	h.resources.Remove(self)
}

func (h *ErrorHost) Register() map[string]any {
	return map[string]any{
		"[method]error.to-debug-string": h.MethodErrorToDebugString,
		"[resource-drop]error":          h.ResourceDropError,
	}
}
