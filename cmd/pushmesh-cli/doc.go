// Package main provides the entry point for pushmesh-cli.
//
// Usage:
//
//	pushmesh-cli health
//	pushmesh-cli connections --detail
//	pushmesh-cli notify m1 "build finished"
//	pushmesh-cli listen m1
//	pushmesh-cli config validate /etc/pushmesh/server.yaml
package main
