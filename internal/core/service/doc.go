// Package service provides domain services for PushMesh.
//
// Domain services contain the relay's business logic and orchestrate
// operations on domain models. They define interfaces for their storage
// dependencies, allowing for dependency injection and testability.
//
// This package contains:
//
//   - NotifyService: routes a notification to the live connection of its
//     destination, reporting Delivered, NotConnected or DeliveryFailed
//
// Services are stateless and thread-safe.
package service
