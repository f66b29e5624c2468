// Package config holds pushmesh-cli's own settings (~/.pushmesh/cli.yaml):
// the default relay address, saved profiles, output format and request
// timeout. Command-line flags and PUSHMESH_SERVER override the file.
package config
