// Package confloader loads configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. A YAML file
//  3. Environment variables (PUSHMESH_ prefix, "__" between sections)
//
// Watcher reports edits to the file so callers can Reload and apply the
// settings that are safe to change at runtime.
package confloader
