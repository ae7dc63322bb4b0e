// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:5000/metrics

# Available Metrics

Database:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table}

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Uploads and auth:
  - uploads_total{kind,result}, upload_bytes_total{kind}
  - auth_attempts_total{method,result}
  - authz_decisions_total{object,action,decision}

Live feed:
  - websocket_connections, websocket_messages_sent_total, websocket_messages_received_total
  - websocket_errors_total{error_type}
  - events_published_total{topic}, events_forwarded_total{topic}
  - live_sessions, live_tracked_locations, density_alerts_total{location}

Resilience and caching:
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
  - cache_hits_total, cache_misses_total, cache_entries, cache_evictions_total

# Usage

	start := time.Now()
	err := db.QueryRowContext(ctx, query, args...).Scan(&out)
	metrics.RecordDBQuery("select", "sensors", time.Since(start), err)
*/
package metrics
