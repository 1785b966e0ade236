// Package ws serves dashboard callbacks over WebSocket.
//
// Each connection is a session with its own input State, starting from the
// hub's default. The protocol is JSON in both directions:
//
//	client → {"id": "site-dropdown", "value": "KSC LC-39A"}
//	client → {"id": "payload-slider", "value": [2000, 8000]}
//	client → {"id": "", "state": {"site-dropdown": "ALL", "payload-slider": [0, 10000]}}
//	server → {"event": "outputs", "session": "...", "outputs": {id: figure}, "svg": {id: "<svg…"}}
//	server → {"event": "error", "session": "...", "error": "..."}
//
// The server sends every output once on connect. After that a change
// re-evaluates only the callbacks listening to the changed input. A rejected
// change (unknown input, inverted range) leaves the session state untouched.
//
// Run blocks until its context is cancelled, then closes every session.
package ws
