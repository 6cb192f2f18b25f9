package service

import (
	"context"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/metinatakli/cinema-operations/internal/service"

type instruments struct {
	bookings   metric.Int64Counter
	admissions metric.Int64Counter
	ratings    metric.Int64Counter
}

func newInstruments(provider metric.MeterProvider) instruments {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(instrumentationName)

	// Instrument creation only fails on invalid names; the no-op fallbacks
	// returned alongside the error are safe to use.
	bookings, _ := meter.Int64Counter("cinema.seat.operations",
		metric.WithDescription("Seat book, rebook and release attempts by outcome"))
	admissions, _ := meter.Int64Counter("cinema.showing.admissions",
		metric.WithDescription("Showing validation attempts by outcome"))
	ratings, _ := meter.Int64Counter("cinema.rating.recomputes",
		metric.WithDescription("Movie rating recomputations by outcome"))

	return instruments{
		bookings:   bookings,
		admissions: admissions,
		ratings:    ratings,
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}

	return domain.KindOf(err).String()
}

func record(ctx context.Context, counter metric.Int64Counter, op string, err error) {
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome(err)),
	))
}
