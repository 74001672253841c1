package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline metrics
var (
	SubtitlePipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_pipeline_requests_total",
			Help: "Total number of subtitle pipeline requests by outcome.",
		},
		[]string{"status"},
	)

	SubtitleDecodedEncodingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_decoded_encoding_total",
			Help: "Total number of subtitles decoded, by the encoding that matched.",
		},
		[]string{"encoding"},
	)

	SubtitleDroppedBlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subtitle_dropped_blocks_total",
			Help: "Total number of malformed SRT blocks dropped during conversion.",
		},
	)
)

// Pipeline status label values
const (
	StatusSuccess        = "success"
	StatusCached         = "cached"
	StatusRetrievalError = "retrieval_error"
	StatusInvalidSource  = "invalid_source"
	StatusError          = "error"
)

func init() {
	prometheus.MustRegister(
		SubtitlePipelineRequestsTotal,
		SubtitleDecodedEncodingTotal,
		SubtitleDroppedBlocksTotal,
	)
}
