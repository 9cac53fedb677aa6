package rabbitmq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventbus_messages_published_total",
		Help: "The total number of messages published to the broker",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventbus_publish_errors_total",
		Help: "The total number of failed publish attempts",
	})
	connectAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventbus_connect_attempts_total",
		Help: "The total number of broker dial attempts",
	})
	connectsExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventbus_connects_exhausted_total",
		Help: "The total number of times the dial retry budget was spent",
	})
)
