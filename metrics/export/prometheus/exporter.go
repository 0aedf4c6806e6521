package prometheus

import (
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authservice "github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/metrics/export/internaldefs"
)

// MetricsSource is satisfied by *authservice.Engine.
type MetricsSource interface {
	MetricsSnapshot() authservice.MetricsSnapshot
	AuditDropped() uint64
}

type counterDesc struct {
	id   authservice.MetricID
	desc *promclient.Desc
}

type histogramDesc struct {
	id   authservice.MetricID
	desc *promclient.Desc
}

// Exporter collects engine counters at scrape time.
type Exporter struct {
	source       MetricsSource
	counters     []counterDesc
	histograms   []histogramDesc
	auditDropped *promclient.Desc
}

var _ promclient.Collector = (*Exporter)(nil)

// NewExporter creates a collector that reads from engine.
func NewExporter(engine *authservice.Engine) *Exporter {
	return NewExporterFromSource(engine)
}

// NewExporterFromSource creates a collector over any MetricsSource.
func NewExporterFromSource(source MetricsSource) *Exporter {
	e := &Exporter{
		source:     source,
		counters:   make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms: make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped: promclient.NewDesc(
			internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil,
		),
	}
	for _, def := range internaldefs.CounterDefs {
		e.counters = append(e.counters, counterDesc{
			id:   def.ID,
			desc: promclient.NewDesc(def.Name, def.Help, nil, nil),
		})
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histograms = append(e.histograms, histogramDesc{
			id:   def.ID,
			desc: promclient.NewDesc(def.Name, def.Help, nil, nil),
		})
	}
	return e
}

func (e *Exporter) Describe(ch chan<- *promclient.Desc) {
	for _, c := range e.counters {
		ch <- c.desc
	}
	for _, h := range e.histograms {
		ch <- h.desc
	}
	ch <- e.auditDropped
}

// Collect emits nothing when the engine has metrics disabled.
func (e *Exporter) Collect(ch chan<- promclient.Metric) {
	if e == nil || e.source == nil {
		return
	}

	snapshot := e.source.MetricsSnapshot()
	dropped := e.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return
	}

	for _, c := range e.counters {
		ch <- promclient.MustNewConstMetric(c.desc, promclient.CounterValue, float64(snapshot.Counters[c.id]))
	}

	for _, h := range e.histograms {
		raw, ok := snapshot.Histograms[h.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, bound := range internaldefs.HistogramUpperBounds {
			buckets[bound] = cumulative[i]
		}
		// Snapshots carry no sum; exposition keeps the field at zero.
		ch <- promclient.MustNewConstHistogram(h.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- promclient.MustNewConstMetric(e.auditDropped, promclient.CounterValue, float64(dropped))
}

// Register adds the exporter to reg.
func (e *Exporter) Register(reg promclient.Registerer) error {
	return reg.Register(e)
}

// Handler serves the exporter together with Go runtime and process
// collectors from a private registry.
func (e *Exporter) Handler() http.Handler {
	reg := promclient.NewRegistry()
	reg.MustRegister(
		e,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
