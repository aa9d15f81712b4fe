// Package metrics Prometheus метрики эмулятора SCCP устройств.
//
// Collector регистрирует метрики в собственном реестре, поэтому несколько
// экземпляров (например, в тестах) не конфликтуют. Все методы допускают
// nil получателя и в этом случае ничего не делают.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sccp"

// Collector собирает метрики устройств
type Collector struct {
	registry *prometheus.Registry

	messagesSent     *prometheus.CounterVec
	messagesReceived *prometheus.CounterVec
	events           *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	framingErrors    prometheus.Counter
	rtpSent          prometheus.Counter
	rtpReceived      prometheus.Counter
	registered       prometheus.Gauge
	rtpChannels      prometheus.Gauge
}

// NewCollector создает сборщик с новым реестром
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		messagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of SCCP messages sent by devices",
		}, []string{"message"}),
		messagesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of SCCP messages received by devices",
		}, []string{"message"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of events published by devices",
		}, []string{"event"}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of SCCP messages dropped because of decode errors",
		}),
		framingErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "framing_errors_total",
			Help:      "Total number of control connections closed because of framing errors",
		}),
		rtpSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rtp_packets_sent_total",
			Help:      "Total number of RTP packets sent",
		}),
		rtpReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rtp_packets_received_total",
			Help:      "Total number of RTP packets received",
		}),
		registered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices_registered",
			Help:      "Number of currently registered devices",
		}),
		rtpChannels: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rtp_channels_open",
			Help:      "Number of currently open RTP channels",
		}),
	}
}

// Registry реестр, в котором зарегистрированы метрики
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) MessageSent(name string) {
	if c == nil {
		return
	}
	c.messagesSent.WithLabelValues(name).Inc()
}

func (c *Collector) MessageReceived(name string) {
	if c == nil {
		return
	}
	c.messagesReceived.WithLabelValues(name).Inc()
}

func (c *Collector) Event(name string) {
	if c == nil {
		return
	}
	c.events.WithLabelValues(name).Inc()
}

func (c *Collector) DecodeError() {
	if c == nil {
		return
	}
	c.decodeErrors.Inc()
}

func (c *Collector) FramingError() {
	if c == nil {
		return
	}
	c.framingErrors.Inc()
}

func (c *Collector) RTPSent() {
	if c == nil {
		return
	}
	c.rtpSent.Inc()
}

func (c *Collector) RTPReceived() {
	if c == nil {
		return
	}
	c.rtpReceived.Inc()
}

// Registered меняет число зарегистрированных устройств на delta
func (c *Collector) Registered(delta float64) {
	if c == nil {
		return
	}
	c.registered.Add(delta)
}

// RTPChannels меняет число открытых RTP каналов на delta
func (c *Collector) RTPChannels(delta float64) {
	if c == nil {
		return
	}
	c.rtpChannels.Add(delta)
}
