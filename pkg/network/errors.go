package network

import "errors"

var (
	// ErrEmptyGraph is returned by measures that are undefined without nodes.
	ErrEmptyGraph = errors.New("network: graph has no nodes")

	// ErrNoEdges is returned by community detection on an edgeless graph,
	// where modularity is undefined.
	ErrNoEdges = errors.New("network: graph has no edges")

	// ErrDisconnected is returned by path statistics on a disconnected graph.
	ErrDisconnected = errors.New("network: graph is not connected")

	// ErrNotConverged is returned when power iteration exhausts its budget.
	ErrNotConverged = errors.New("network: power iteration failed to converge")

	ErrUnknownAlgorithm = errors.New("network: unknown community algorithm")
)
