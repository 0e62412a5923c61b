// Package service defines the capability contracts cuebird consumers
// depend on, together with the capability identifiers used to register
// and resolve them through the container.
//
// Nothing in this package touches a concrete backend: implementations
// live in internal/content, internal/settings, internal/style,
// internal/reading and internal/infrastructure, and are chosen by a
// composition root (internal/compose).
package service

import "github.com/cuebird/cuebird/internal/container"

// Capability identifiers. One factory per identifier per container.
const (
	// CapFileLoader loads script files from disk.
	CapFileLoader container.Capability = "content.loader"
	// CapContentParser renders markdown to HTML and counts words.
	CapContentParser container.Capability = "content.parser"
	// CapContentAnalyzer derives statistics from rendered HTML.
	CapContentAnalyzer container.Capability = "content.analyzer"
	// CapSettingsStore persists user preferences.
	CapSettingsStore container.Capability = "settings.store"
	// CapStyleProvider supplies stylesheets for the current theme.
	CapStyleProvider container.Capability = "style.provider"
	// CapReadingMetrics tracks reading time and pace.
	CapReadingMetrics container.Capability = "reading.metrics"
	// CapReadingController drives scroll start/pause/speed state.
	CapReadingController container.Capability = "reading.controller"
	// CapSessionStore records finished reading sessions.
	CapSessionStore container.Capability = "session.store"
)
