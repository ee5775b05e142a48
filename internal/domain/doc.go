// Package domain contains the core domain entities and value objects for camship.
//
// This package represents the innermost layer of the architecture. It has
// no dependencies on infrastructure concerns (WebSocket, camera drivers,
// logging) and contains only pure business logic.
//
// # Entities
//
//   - [Frame]: A single JPEG camera frame with dimensions and capture time
//   - [SessionState]: The connection state of the device's transport session
//   - [RetryPolicy]: Bounded short-backoff retries with a long degraded wait
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
