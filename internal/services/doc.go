// Package services implements the HTTP clients on both sides of the relay.
//
// # Particle Cloud
//
// [ParticleClient] calls a device cloud function with a form-encoded body of
// access_token and arg. The token comes from an [oauth2.TokenSource] so the caller
// decides where it lives; the relay reads it from the environment on each request.
//
// Every HTTP status comes back as a [Response]. Only transport failures are errors:
//   - [shared.ErrServiceUnavailable] : network failure or unreadable body
//   - [shared.ErrTimeout] : the request context's deadline expired
//
// # Relay
//
// [RelayClient] is the dashboard side. It posts [models.SyncPayload] values to the
// relay and decodes [models.RelayReply] envelopes. Non-2xx replies wrap
// [shared.ErrAPIRequest] with the relay's error message.
//
// Neither client retries.
package services
