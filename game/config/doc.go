// Package config loads RichMan board configurations.
//
// A board file is JSON or YAML. It names the two loops' sizes and junction
// tiles, lists every tile and stock, and may override any rule constant;
// omitted rules keep the engine defaults. Files are checked against an
// embedded JSON Schema first, so typos in rule names fail loudly, and then
// against the engine's own playability checks.
//
// The classic 48 tile board is compiled in and is listed as "classic" unless a
// file with that name shadows it.
//
// Usage:
//
//	manager, err := config.NewManager("configs", "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	board, err := manager.LoadConfig("quick")
//	configs, err := manager.ListConfigs()
package config
