// Package pipeline orchestrates a request/response round trip.
//
// A send runs in three steps: every loaded plugin's pre-send hook fires in
// registration order, the transport collaborator performs the exchange, and
// every plugin's post-receive hook fires in the same order. Hooks always
// wrap the transport call symmetrically; a transport failure short-circuits
// before any post-receive hook fires.
//
// Hook failures never abort a send. The plugin manager contains them, so a
// misbehaving plugin costs at most its own mutation, not the request.
package pipeline
