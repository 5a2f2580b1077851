package service

import (
	"io"
	"log/slog"

	"github.com/BothSann/kdmv-sub002/internal/event"
	pkgkafka "github.com/BothSann/kdmv-sub002/pkg/kafka"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestProducer returns an event producer pointed at a local broker. Event
// publishing is best-effort, so an unreachable broker does not fail any
// service operation under test.
func newTestProducer() *event.Producer {
	logger := newTestLogger()
	kp := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	return event.NewProducer(kp, logger)
}
