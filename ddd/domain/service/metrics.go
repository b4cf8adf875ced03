package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 图片管线指标
var (
	transcodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_image_transcode_duration_seconds",
		Help:    "Duration of image decode+resize+encode.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"format"})

	transcodeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_image_transcode_total",
		Help: "Transcode results by outcome (ok, passthrough, decode_error, encode_error).",
	}, []string{"outcome"})

	putAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_blob_put_attempts_total",
		Help: "Blob store put attempts by result.",
	}, []string{"result"})

	batchFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_upload_files_total",
		Help: "Files processed by the upload orchestrator, by error kind (empty kind = success).",
	}, []string{"kind"})

	putInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_blob_put_in_flight",
		Help: "Number of blob store put calls currently in flight.",
	})

	cleanupResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_asset_cleanup_total",
		Help: "Superseded asset cleanup scheduling results.",
	}, []string{"result"})
)
