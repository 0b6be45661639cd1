// Package service provides the use-case layer over the repository.
//
// BlogService runs each tagging operation as one explicit unit of work:
// fetch the owning entity eagerly, fetch the other side lazily, mutate
// through the synchronizer, and flush once. The EventBus fans out
// change notifications to subscribers (the SSE endpoint, logging).
package service
