// Package clocks implements WASI clock interfaces for time operations.
//
// Implements:
//   - wasi:clocks/monotonic-clock@0.2.8 - Monotonic time measurements
//   - wasi:clocks/wall-clock@0.2.3 - Wall clock time
//
// Both hosts read the same vfs.Clock the filesystem stamps nodes with, so a
// simulated clock drives guest time and file timestamps together.
package clocks
