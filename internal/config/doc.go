// Package config loads the moonclock configuration file.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/moonclock/config.toml
//  3. If the file doesn't exist, fall back to Default
//  4. Keys that are missing or empty keep their defaults
//
// The format follows the extension: .toml, or .yaml/.yml.
//
// # Format
//
//	tick_interval_ms = 100
//	sync_interval_seconds = 600
//	illumination_precision = 1
//	search_max_days = 400
//	location = "Europe/Lisbon"
//	font = "proggy"
//
//	[display]
//	width = 256
//	height = 64
//	spi = ""
//	dc = "GPIO25"
//	rst = "GPIO24"
//	hz = 10000000
//	rotated = false
//	contrast = 255
//	invert = false
//
// Load validates the result and joins every problem into one error wrapping
// ErrInvalid. Scheduler, Face and Display.Opts turn it into the values the
// moonclock, textsurface and ssd1322 packages take.
package config
