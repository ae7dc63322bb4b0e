// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package events carries application events between producers and the
WebSocket hub over an in-process watermill GoChannel.

Producers publish JSON payloads on one of four topics:

	analysis.created  an upload was analyzed (payload models.Analysis)
	sensor.updated    a sensor was created or changed (payload models.Sensor)
	density.tick      the live ticker advanced a location (payload models.DensityTick)
	notification      a live notification was raised (payload models.Notification)

Every message carries a watermill UUID and metadata with its topic and,
when known, its location. The Router forwards every topic to a Forwarder
and runs as a supervised service:

	bus := events.NewBus(logger)
	router, err := events.NewRouter(events.DefaultRouterConfig(), bus, hub, logger)
	go router.Run(ctx)
	<-router.Running()
	_ = bus.Publish(events.TopicDensityTick, tick.Location, tick)
*/
package events
