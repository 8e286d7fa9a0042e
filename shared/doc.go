// Package shared provides a reference-counted handle to a single value that
// many goroutines may own at once. Every access to the value goes through an
// exclusive critical section; a critical section that panics poisons the
// container so later holders cannot silently observe a half-written value.
package shared
