package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "intraday"

// connectionStates are the label values of the connection_state gauge.
var connectionStates = []string{"disconnected", "connecting", "connected", "closed"}

// Collector records client events into a private Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	framesReceived      prometheus.Counter
	framesDropped       *prometheus.CounterVec
	messagesDelivered   *prometheus.CounterVec
	handlerFailures     *prometheus.CounterVec
	subscriptionsActive prometheus.Gauge
	connectionState     *prometheus.GaugeVec
	tokenRefreshes      *prometheus.CounterVec
}

// New creates a Collector with Go runtime and process collectors registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Inbound STOMP frames seen by the dispatcher.",
		}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Inbound frames not delivered to any subscription, by reason.",
		}, []string{"reason"}),
		messagesDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Messages handed to subscription handlers, by topic.",
		}, []string{"topic"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Handler errors, panics and decode failures, by topic.",
		}, []string{"topic"}),
		subscriptionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions_active",
			Help:      "Currently registered subscriptions.",
		}),
		connectionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "1 for the current connection state, 0 otherwise.",
		}, []string{"state"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Token refresh attempts, by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.framesReceived,
		c.framesDropped,
		c.messagesDelivered,
		c.handlerFailures,
		c.subscriptionsActive,
		c.connectionState,
		c.tokenRefreshes,
	)

	c.ConnectionState("disconnected")

	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) FrameReceived() {
	c.framesReceived.Inc()
}

func (c *Collector) FrameDropped(reason string) {
	c.framesDropped.WithLabelValues(reason).Inc()
}

func (c *Collector) MessageDelivered(topic string) {
	c.messagesDelivered.WithLabelValues(topic).Inc()
}

func (c *Collector) HandlerFailed(topic string) {
	c.handlerFailures.WithLabelValues(topic).Inc()
}

func (c *Collector) SubscriptionsActive(n int) {
	c.subscriptionsActive.Set(float64(n))
}

// ConnectionState marks state as current.
func (c *Collector) ConnectionState(state string) {
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		c.connectionState.WithLabelValues(s).Set(v)
	}
}

// TokenRefreshed counts a refresh attempt.
func (c *Collector) TokenRefreshed(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	c.tokenRefreshes.WithLabelValues(result).Inc()
}
