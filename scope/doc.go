// Package scope provides a task coordinator for Go.
// A Scope owns the workers it spawns and hands back one Handle per worker.
// Joining a handle yields the worker's Outcome; a worker that fails or panics
// is reported as data and never takes down the coordinator or its siblings.
package scope
