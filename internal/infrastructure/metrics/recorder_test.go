package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

var _ usecase.Metrics = (*Recorder)(nil)

func TestRecorder(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveSettlement("confirm", "captured")
	r.ObserveSettlement("confirm", "captured")
	r.ObserveDeviceDecision("strict", "wrong_device")
	r.ObserveView(true)
	r.ObserveView(false)
	r.ObserveView(false)
	r.ObserveGatewayCall("capture", errors.New("timeout"), 2*time.Second)
	r.ObserveGatewayCall("capture", nil, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.settlements.WithLabelValues("confirm", "captured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deviceDecisions.WithLabelValues("strict", "wrong_device")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.views.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.views.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.gatewayCalls.WithLabelValues("capture", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.gatewayDuration))
}

func TestRecorderRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)

	assert.Panics(t, func() { NewRecorder(reg) })
}
