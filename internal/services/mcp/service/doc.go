// Package service wires MCP protocol transport to the dispatch core.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or HTTP/SSE and delegates call semantics to the dispatcher.
package service
