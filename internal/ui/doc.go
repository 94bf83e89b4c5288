// Package ui renders git command lifecycle events for people watching a release job.
//
// Structured telemetry continues to flow through the executor's zap logger;
// the console logger here only adds concise sentences such as
// "Pushed 7.55.0-rc.2 to origin" when console log format is selected.
package ui
