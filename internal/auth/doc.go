// Package auth provides API key authentication for the dashboard.
//
// Middleware(mode, header, key) guards HTTP handlers: the REST API, chart
// images and the WebSocket callback endpoint. APIKeyInterceptor applies the
// same rule to unary gRPC calls on the health server.
//
// When mode != "apikey" or key == "", every request passes through. A
// missing or incorrect key yields 401 over HTTP and codes.Unauthenticated
// over gRPC.
package auth
