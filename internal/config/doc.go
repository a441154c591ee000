// Package config provides configuration for eventmgr.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← EVENTMGR_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML, chosen by extension
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The merged result is validated before use. A Watcher reloads the file when
// it changes on disk and hands the new configuration to a callback.
package config
