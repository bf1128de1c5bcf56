// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "streamdir"

var (
	// DBQueriesTotal tracks registry database queries.
	// Labels:
	//   - query_type: select, insert, update, delete
	//   - table: streams, media_servers
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)

	// HTTPRequestsTotal tracks served HTTP requests.
	// Labels:
	//   - method: HTTP method
	//   - status: numeric response status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "status"},
	)

	// CacheOperationsTotal tracks stream cache operations.
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)

	// UpstreamRequestsTotal tracks calls to external collaborators.
	// Labels:
	//   - service: keymatch, auth, regionmatch
	//   - status: success, error
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream collaborator requests",
		},
		[]string{"service", "status"},
	)

	// ThumbnailGenerationsTotal tracks frame-capture outcomes.
	// Labels:
	//   - status: success, error
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_generations_total",
			Help:      "Total number of thumbnail generation attempts",
		},
		[]string{"status"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior on cached reads.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// DB query type constants.
const (
	DBQuerySelect = "select"
	DBQueryInsert = "insert"
	DBQueryUpdate = "update"
	DBQueryDelete = "delete"
)

// Table name constants.
const (
	TableStreams      = "streams"
	TableMediaServers = "media_servers"
)

// Upstream service constants.
const (
	UpstreamKeyMatch    = "keymatch"
	UpstreamAuth        = "auth"
	UpstreamRegionMatch = "regionmatch"
)

// Generic outcome constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
