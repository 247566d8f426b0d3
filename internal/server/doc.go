// Package server provides HTTP routing, middleware, and the device relay handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses gorilla/mux internally. Unknown paths and methods
// answer with JSON error bodies.
//
// # Relay Handler
//
// [RelayHandler] serves /api/photon and /sync-endpoint:
//   - GET reports whether PARTICLE_ACCESS_TOKEN and PARTICLE_DEVICE_ID are set, never their values
//   - POST {"action":"save"} sends {"save":true} to the device
//   - POST with an emotion and a color sends the abbreviated device command
//   - any other method answers 405
//
// Credentials are looked up on every POST before any outbound call. Upstream transport
// failures answer 500, upstream rejections mirror the upstream status with its error
// message and body.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
