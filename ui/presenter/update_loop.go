package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Devices    *DevicePresenter
	Status     *StatusPresenter
	Timestamps *TimestampPresenter
	Preview    *PreviewPresenter
	Exports    *ExportPresenter
	Schedule   func()
}

func NewLoop(devices *DevicePresenter, status *StatusPresenter, ts *TimestampPresenter, preview *PreviewPresenter, exports *ExportPresenter, schedule func()) *Loop {
	return &Loop{Devices: devices, Status: status, Timestamps: ts, Preview: preview, Exports: exports, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Devices != nil {
		l.Devices.Tick()
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Timestamps != nil {
		l.Timestamps.Tick(now)
	}
	if l.Preview != nil {
		l.Preview.Tick()
	}
	if l.Exports != nil {
		l.Exports.Tick()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
