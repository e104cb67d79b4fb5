// Package telemetry exposes Prometheus collectors for the netplay path.
// The spectator server serves them on /metrics; without it they cost one
// atomic add per event.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsSent counts outgoing wire packets by kind
	// (set_direction, commit_frame, good_bye).
	PacketsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kurve_packets_sent_total",
		Help: "Outgoing wire packets by kind.",
	}, []string{"kind"})

	// PacketsReceived counts decoded incoming wire packets by kind.
	PacketsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kurve_packets_received_total",
		Help: "Decoded incoming wire packets by kind.",
	}, []string{"kind"})

	// FramesRun counts frames for which both commit signals were observed.
	FramesRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kurve_frames_run_total",
		Help: "Lockstep frames released for simulation.",
	})

	// StalePacketsDropped counts packets discarded under the stale-parity
	// policy (parity of the frame just run).
	StalePacketsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kurve_stale_packets_dropped_total",
		Help: "Packets dropped as stale duplicates of the previous frame.",
	})

	// ProtocolErrors counts typed protocol failures surfaced to the driver.
	ProtocolErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kurve_protocol_errors_total",
		Help: "Protocol violations (undecodable bytes, out-of-window parity).",
	})
)
