// Package file provides the TOML-backed ConfigStore.
//
// Keys use dot notation ("matching.window") in memory and are written back
// as nested TOML tables:
//
//	[matching]
//	window = 100
//	join_threshold = 0.8
package file
