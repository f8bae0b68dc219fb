// Package types holds the shared error taxonomy used across the service.
//
// Every terminal failure a caller can observe maps to one ErrorCode, and the
// HTTP layer derives its status codes from it.
package types
