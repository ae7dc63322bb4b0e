// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package services provides suture.Service wrappers for Crowd Analyzer
components.

Each wrapper translates a component's lifecycle (ListenAndServe, Run,
RunWithContext, a periodic function) into suture's context-aware Serve and
implements fmt.Stringer so supervisor events name the service.

  - HTTPServerService: *http.Server with graceful shutdown
  - WebSocketHubService: websocket.Hub
  - EventRouterService: events.Router (watermill)
  - IntervalService: periodic housekeeping

Services return ctx.Err() on a requested shutdown and a wrapped error on
failure, which suture counts towards the restart backoff.
*/
package services
