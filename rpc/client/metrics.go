package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// inflightPackets counts submitted packets of all clients in the process
var inflightPackets = metrics.NewCounter("dledger_client_inflight_packets")

// clientMetrics records per operation counters and latencies
type clientMetrics struct {
	executor string
}

func newClientMetrics(executor string) *clientMetrics {
	return &clientMetrics{executor: executor}
}

func (m *clientMetrics) submitted(op common.Operation) {
	inflightPackets.Inc()
	metrics.GetOrCreateCounter(fmt.Sprintf(`dledger_client_submitted_total{executor=%q,operation=%q}`, m.executor, op)).Inc()
}

func (m *clientMetrics) completed(op common.Operation, status common.PacketStatus, err error, start time.Time) {
	inflightPackets.Dec()
	metrics.GetOrCreateCounter(fmt.Sprintf(`dledger_client_completed_total{executor=%q,operation=%q}`, m.executor, op)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`dledger_client_request_duration_seconds{executor=%q,operation=%q}`, m.executor, op)).UpdateDuration(start)
	if err != nil {
		m.failed(op, err, status)
	}
}

func (m *clientMetrics) rejected(op common.Operation, status common.PacketStatus) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`dledger_client_errors_total{executor=%q,operation=%q,reason=%q}`, m.executor, op, status)).Inc()
}

func (m *clientMetrics) failed(op common.Operation, err error, status common.PacketStatus) {
	reason := status.String()
	switch {
	case errors.Is(err, common.ErrShutdown):
		reason = "shutdown"
	case status == common.PacketOk:
		reason = "unexpected_reply"
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`dledger_client_errors_total{executor=%q,operation=%q,reason=%q}`, m.executor, op, reason)).Inc()
}
