// Package metrics holds run diagnostics observed once per tick.
package metrics
