package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jtarrant/wedohub/internal/wedo"
)

// PortMonitor logs a registry snapshot on a fixed interval. It changes
// nothing; the registry is already kept current by the session's
// notification handling.
type PortMonitor struct {
	session  *Session
	interval time.Duration
}

func NewPortMonitor(session *Session, interval time.Duration) *PortMonitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &PortMonitor{session: session, interval: interval}
}

func (p *PortMonitor) Run(ctx context.Context) {
	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			slog.Info("[Ports] registry", "ports", formatSnapshot(p.session.Registry().Snapshot()))
		}
	}
}

func formatSnapshot(snap map[byte]wedo.DeviceType) string {
	if len(snap) == 0 {
		return "empty"
	}
	ports := make([]int, 0, len(snap))
	for p := range snap {
		ports = append(ports, int(p))
	}
	sort.Ints(ports)

	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		parts = append(parts, fmt.Sprintf("%d:%s", p, snap[byte(p)]))
	}
	return strings.Join(parts, " ")
}

// SensorPoller reads the sensor-value characteristic on a fixed interval
// as a fallback for transports that deliver notifications unreliably.
// Readings go through the same decode dispatch as pushed notifications.
type SensorPoller struct {
	session  *Session
	interval time.Duration
}

func NewSensorPoller(session *Session, interval time.Duration) *SensorPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &SensorPoller{session: session, interval: interval}
}

func (p *SensorPoller) Run(ctx context.Context) {
	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		data, err := p.session.ReadSensor()
		if err != nil {
			slog.Warn("[Sensors] poll read failed", "error", err)
			continue
		}
		if len(data) == 0 {
			continue
		}
		ev := wedo.DecodeSensorEvent(data, p.session.Registry().Get)
		logSensorEvent("[Sensors] poll", ev)
	}
}

// logSensorEvent writes one reading at info level; unhandled packets stay
// at debug so a disconnected sensor does not flood the log.
func logSensorEvent(prefix string, ev wedo.SensorEvent) {
	switch ev.Kind {
	case wedo.SensorTilt:
		slog.Info(prefix, "port", ev.Port, "tilt", ev.Tilt.String())
	case wedo.SensorDistance:
		slog.Info(prefix, "port", ev.Port, "distance", ev.Distance)
	default:
		slog.Debug(prefix, "port", ev.Port, "device", ev.Device.String(), "unhandled", true)
	}
}
