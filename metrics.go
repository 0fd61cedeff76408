package pubscrape

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pubscrape_posts_scanned_total",
		Help: "Post files read and extracted.",
	})
	postsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pubscrape_posts_skipped_total",
		Help: "Post files skipped because they could not be read or extracted.",
	})
	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pubscrape_scan_duration_seconds",
		Help:    "Time taken to scan and extract the posts directory.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pubscrape_cache_hits_total",
		Help: "Reads served from the post cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pubscrape_cache_misses_total",
		Help: "Reads that rescanned the posts directory.",
	})
)
