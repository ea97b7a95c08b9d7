// Package domain defines the MCP tools exposed by somnia: their schemas and
// the handlers that answer them from the dream timeline and the journal.
package domain
