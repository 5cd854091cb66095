package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bdgeo_lookups_total",
		Help: "Total number of lookups by operation",
	}, []string{"op"})
	LookupEmptyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bdgeo_lookup_empty_total",
		Help: "Total number of lookups returning no records",
	}, []string{"op"})
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bdgeo_dataset_loads_total",
		Help: "Dataset load attempts by source and status",
	}, []string{"source", "status"})
	DatasetRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bdgeo_dataset_records",
		Help: "Number of records in the loaded dataset by collection",
	}, []string{"collection"})
	DatasetLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bdgeo_dataset_load_duration_ms",
		Help:    "Dataset load duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
)

func init() {
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(LookupEmptyTotal)
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetRecords)
	prometheus.MustRegister(DatasetLoadDurationMs)
}

// 文档注释：以文本暴露格式写出已注册的指标
// 背景：命令行单次运行不监听端口，结果可写入 node_exporter textfile 目录供采集。
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
