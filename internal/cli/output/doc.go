// Package output renders command results for pushmesh-cli.
//
// Three formats are supported: an aligned table (the default, with wide
// mode for extra columns), indented JSON, and YAML. Table and YAML output
// take field names from json tags so all three formats agree.
package output
