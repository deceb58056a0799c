// Package component manages the lifecycle of the connections an application
// context owns.
//
// Components start in registration order and stop in reverse order. A start
// failure rolls back the components that were already running.
package component
