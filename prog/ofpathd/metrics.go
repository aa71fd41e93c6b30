package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weaveworks/ofpath/router"
)

func metricsHandler(controller *router.Controller) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(newMetrics(controller))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

type collector struct {
	controller *router.Controller
}

type metric struct {
	*prometheus.Desc
	Collect func(*router.Status, *prometheus.Desc, chan<- prometheus.Metric)
}

func desc(fqName, help string, variableLabels ...string) *prometheus.Desc {
	return prometheus.NewDesc(fqName, help, variableLabels, prometheus.Labels{})
}

func intGauge(desc *prometheus.Desc, val int, labels ...string) prometheus.Metric {
	return prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(val), labels...)
}
func uint64Counter(desc *prometheus.Desc, val uint64, labels ...string) prometheus.Metric {
	return prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(val), labels...)
}

var metrics = []metric{
	{desc("ofpath_switches", "Number of known switches."),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- intGauge(desc, len(s.Switches))
		}},
	{desc("ofpath_links", "Number of known inter-switch links."),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- intGauge(desc, len(s.Links))
		}},
	{desc("ofpath_links_dropped_total", "Number of link announcements naming an unknown switch."),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- uint64Counter(desc, s.Stats.LinksDropped)
		}},
	{desc("ofpath_macs", "Number of MAC addresses with a known location."),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- intGauge(desc, len(s.MACs))
		}},
	{desc("ofpath_packet_ins_total", "Number of packets handed to the controller.", "result"),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- uint64Counter(desc, s.Stats.Unicasts, "unicast")
			ch <- uint64Counter(desc, s.Stats.Floods, "flood")
			ch <- uint64Counter(desc, s.Stats.DecodeErrors, "undecodable")
		}},
	{desc("ofpath_paths_total", "Number of path lookups.", "result"),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- uint64Counter(desc, s.Stats.PathsInstalled, "installed")
			ch <- uint64Counter(desc, s.Stats.PathsNotFound, "not-found")
		}},
	{desc("ofpath_flow_rules_sent_total", "Number of per-hop flow rules sent to switches."),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- uint64Counter(desc, s.Stats.FlowRulesSent)
		}},
	{desc("ofpath_send_errors_total", "Number of messages the control channel failed to send."),
		func(s *router.Status, desc *prometheus.Desc, ch chan<- prometheus.Metric) {
			ch <- uint64Counter(desc, s.Stats.SendErrors)
		}},
}

func newMetrics(controller *router.Controller) *collector {
	return &collector{controller: controller}
}

func (m *collector) Collect(ch chan<- prometheus.Metric) {
	status := router.NewStatus(m.controller)
	for _, metric := range metrics {
		metric.Collect(status, metric.Desc, ch)
	}
}

func (m *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range metrics {
		ch <- metric.Desc
	}
}
