// Package handler provides the HTTP API for relsync.
//
// BlogHandler exposes REST endpoints for posts, tags, and the edges
// between them. EventStream serves change notifications over SSE.
// Middleware provides request logging, panic recovery, and CORS
// support via Chain.
package handler
