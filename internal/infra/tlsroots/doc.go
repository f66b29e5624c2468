// Package tlsroots handles TLS material for the relay and its CLI.
//
//   - roots.go: CA pool (system roots plus private CA files) and the
//     client TLS settings used by pushmesh-cli
//   - watcher.go: CertReloader, which serves server.http's certificate and
//     reloads it via fsnotify when the files are rotated
package tlsroots
