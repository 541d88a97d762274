package sockets

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 引擎的prometheus指标
// 所有方法对nil接收者都是no-op，不想采集就不创建
type Metrics struct {
	Connections   prometheus.Gauge
	MessagesIn    prometheus.Counter
	MessagesOut   prometheus.Counter
	ResolveErrors prometheus.Counter
	InvokeErrors  prometheus.Counter
	RateLimited   prometheus.Counter
}

// NewMetrics 创建并注册指标，reg为nil时用默认Registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fireasy",
			Subsystem: "sockets",
			Name:      "connections",
			Help:      "Current number of live sessions.",
		}),
		MessagesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireasy",
			Subsystem: "sockets",
			Name:      "messages_in_total",
			Help:      "Total inbound messages after reassembly.",
		}),
		MessagesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireasy",
			Subsystem: "sockets",
			Name:      "messages_out_total",
			Help:      "Total outbound messages.",
		}),
		ResolveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireasy",
			Subsystem: "sockets",
			Name:      "resolve_errors_total",
			Help:      "Total messages dropped because decoding failed.",
		}),
		InvokeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireasy",
			Subsystem: "sockets",
			Name:      "invoke_errors_total",
			Help:      "Total failed method invocations.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireasy",
			Subsystem: "sockets",
			Name:      "rate_limited_total",
			Help:      "Total messages dropped by the rate limiter.",
		}),
	}
	reg.MustRegister(m.Connections, m.MessagesIn, m.MessagesOut,
		m.ResolveErrors, m.InvokeErrors, m.RateLimited)
	return m
}

func (m *Metrics) incConnections() {
	if m != nil {
		m.Connections.Inc()
	}
}

func (m *Metrics) decConnections() {
	if m != nil {
		m.Connections.Dec()
	}
}

func (m *Metrics) incMessagesIn() {
	if m != nil {
		m.MessagesIn.Inc()
	}
}

func (m *Metrics) incMessagesOut() {
	if m != nil {
		m.MessagesOut.Inc()
	}
}

func (m *Metrics) incResolveErrors() {
	if m != nil {
		m.ResolveErrors.Inc()
	}
}

func (m *Metrics) incInvokeErrors() {
	if m != nil {
		m.InvokeErrors.Inc()
	}
}

func (m *Metrics) incRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}
