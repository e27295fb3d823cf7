// Package events decouples the services that notice work from the
// workers that do it. The feed service emits a TaskRequestEvent when a
// selected subtopic needs study content prepared; the task package
// registers a handler that turns those events into persisted background
// tasks. Emitters depend only on this package, never on the task runner.
package events
