package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/v1/reservations", "201", 0.02)
	RecordHTTPRequest("POST", "/v1/reservations", "201", 0.03)
	RecordHTTPRequest("POST", "/v1/reservations", "400", 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/v1/reservations", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/v1/reservations", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordReservationAndRejection(t *testing.T) {
	ReservationsTotal.Reset()
	ReservationRejectionsTotal.Reset()

	RecordReservation("pending")
	RecordReservation("confirmed")
	RecordReservation("pending")
	RecordRejection("overlap")

	assert.Equal(t, float64(2), testutil.ToFloat64(ReservationsTotal.WithLabelValues("pending")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ReservationsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ReservationRejectionsTotal.WithLabelValues("overlap")))
}

func TestRecordCancellation(t *testing.T) {
	testCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "courts_reservation_cancellations_total_test",
		Help: "Total number of reservation cancellations",
	})
	old := ReservationCancellationsTotal
	ReservationCancellationsTotal = testCounter
	defer func() { ReservationCancellationsTotal = old }()

	RecordCancellation()
	RecordCancellation()

	assert.Equal(t, float64(2), testutil.ToFloat64(testCounter))
}

func TestRecordEvent(t *testing.T) {
	EventsPublishedTotal.Reset()

	RecordEvent("reservation.created", "ok")
	RecordEvent("reservation.created", "error")

	assert.Equal(t, float64(1), testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("reservation.created", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("reservation.created", "error")))
}
