// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package authz provides role-based authorization using Casbin. The model and
policy are embedded in the binary.

# Roles

	user   read sensors, locations, dashboard, analyses, notifications, events,
	       livestream
	       write uploads, livestream, preferences, notifications
	admin  everything user can, plus any action on sensors, locations, users

Usage with chi:

	enforcer, err := authz.NewEnforcer(5 * time.Minute)
	mw := authz.NewMiddleware(enforcer)
	r.With(mw.AuthorizeByMethod(authz.ObjectSensors)).Post("/api/sensors", h.CreateSensor)
*/
package authz
