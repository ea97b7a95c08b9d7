// Package service hosts the somnia MCP server: it registers the dream tools
// and serves them over the selected transport.
package service
