package clocks

import (
	"context"
	"time"

	"github.com/wippyai/virtfs/vfs"
)

type WallClockHost struct {
	clock vfs.Clock
}

func NewWallClockHost(clock vfs.Clock) *WallClockHost {
	return &WallClockHost{clock: clock}
}

func (h *WallClockHost) Namespace() string {
	return "wasi:clocks/wall-clock@0.2.3"
}

type Datetime struct {
	Seconds     uint64
	Nanoseconds uint32
}

// ToDatetime converts t to seconds and nanoseconds since the Unix epoch.
// Times before the epoch clamp to zero.
func ToDatetime(t time.Time) Datetime {
	if t.Unix() < 0 {
		return Datetime{}
	}
	return Datetime{
		Seconds:     uint64(t.Unix()),
		Nanoseconds: uint32(t.Nanosecond()),
	}
}

// Time converts d back to a time.Time.
func (d Datetime) Time() time.Time {
	return time.Unix(int64(d.Seconds), int64(d.Nanoseconds)).UTC()
}

func (h *WallClockHost) Now(_ context.Context) Datetime {
	return ToDatetime(h.clock.Now(0))
}

func (h *WallClockHost) Resolution(_ context.Context) Datetime {
	return Datetime{Nanoseconds: 1}
}

func (h *WallClockHost) Register() map[string]any {
	return map[string]any{
		"now":        h.Now,
		"resolution": h.Resolution,
	}
}
