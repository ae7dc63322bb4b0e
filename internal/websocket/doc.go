// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package websocket pushes live density ticks, notifications and other bus
events to browsers over gorilla/websocket.

A single Hub owns the client set. Each Client runs a read pump and a write
pump:

  - readPump: reads browser messages, throttled per client with
    golang.org/x/time/rate, and answers ping and subscribe
  - writePump: writes queued messages and keeps the connection alive with
    ping frames

Browser messages:

	{"type":"ping"}                                    answered with pong
	{"type":"subscribe","data":{"location":"Uppal"}}   density.tick and notification only for Uppal
	{"type":"subscribe","data":{}}                     clear the filter

Server messages use the bus topic as their type (density.tick,
notification, analysis.created, sensor.updated) with the event payload as
data. A client that cannot keep up with its send buffer is dropped.

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err == nil {
	    if _, err := hub.Attach(r.Context(), conn, claims.ID); err != nil {
	        conn.Close()
	    }
	}
*/
package websocket
