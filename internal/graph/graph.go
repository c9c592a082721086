// Package graph holds the location graph and the single-source
// shortest-path engine the planner measures distances with.
//
// The engine keeps its results on the nodes. A run from one source is
// reused by every query from that source until Reset is called or a
// query arrives from a different source.
package graph

import (
	"errors"
	"fmt"
	"math"

	"parcel-dispatch-service/internal/domain"
)

var (
	// ErrNegativeWeight is returned when an edge weight is below zero.
	ErrNegativeWeight = errors.New("graph: negative edge weight")

	// ErrUnreachable is returned when no path joins two nodes.
	ErrUnreachable = errors.New("graph: destination unreachable")
)

// Node is a location in the graph. Distance and Pred belong to the most
// recent shortest-path run and are only meaningful after one.
type Node struct {
	ID       string
	Distance float64
	Pred     *Node

	index int
}

func (n *Node) reset() {
	n.Distance = math.Inf(1)
	n.Pred = nil
}

type edgeKey struct {
	from, to int
}

// Graph is an undirected weighted graph of addresses.
type Graph struct {
	nodes     []*Node
	byID      map[string]*Node
	adjacency [][]int
	weights   map[edgeKey]float64

	ran    bool
	source string
}

func New() *Graph {
	return &Graph{
		byID:    make(map[string]*Node),
		weights: make(map[edgeKey]float64),
	}
}

// Build creates one node per location, in input order, and an undirected
// edge for every positive distance plus a zero-weight self edge.
func Build(locations []*domain.Location) (*Graph, error) {
	g := New()
	for _, loc := range locations {
		g.AddNode(loc.Address)
	}

	for _, loc := range locations {
		if err := g.AddEdge(loc.Address, loc.Address, 0); err != nil {
			return nil, fmt.Errorf("build graph: %w", err)
		}
		for _, other := range locations {
			miles, ok := loc.Distances[other.Address]
			if !ok || miles == 0 || other.Address == loc.Address {
				continue
			}
			if err := g.AddEdge(loc.Address, other.Address, miles); err != nil {
				return nil, fmt.Errorf("build graph: %w", err)
			}
		}
		for addr := range loc.Distances {
			if !g.Has(addr) {
				return nil, fmt.Errorf("build graph: %q lists distance to %q: %w", loc.Address, addr, domain.ErrLocationNotFound)
			}
		}
	}

	return g, nil
}

// AddNode inserts a node. Adding an existing id returns the existing node.
func (g *Graph) AddNode(id string) *Node {
	if n, ok := g.byID[id]; ok {
		return n
	}
	n := &Node{ID: id, index: len(g.nodes)}
	n.reset()
	g.nodes = append(g.nodes, n)
	g.adjacency = append(g.adjacency, nil)
	g.byID[id] = n
	g.ran = false
	return n
}

// AddEdge records an undirected edge. Re-adding an edge overwrites its weight.
func (g *Graph) AddEdge(from, to string, weight float64) error {
	if weight < 0 || math.IsNaN(weight) {
		return fmt.Errorf("%w: %q-%q weight=%v", ErrNegativeWeight, from, to, weight)
	}
	a, ok := g.byID[from]
	if !ok {
		return fmt.Errorf("add edge from %q: %w", from, domain.ErrLocationNotFound)
	}
	b, ok := g.byID[to]
	if !ok {
		return fmt.Errorf("add edge to %q: %w", to, domain.ErrLocationNotFound)
	}

	g.addDirected(a.index, b.index, weight)
	if a.index != b.index {
		g.addDirected(b.index, a.index, weight)
	}
	g.ran = false
	return nil
}

func (g *Graph) addDirected(from, to int, weight float64) {
	k := edgeKey{from, to}
	if _, ok := g.weights[k]; !ok {
		g.adjacency[from] = append(g.adjacency[from], to)
	}
	g.weights[k] = weight
}

func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Weight returns the direct edge weight between two nodes.
func (g *Graph) Weight(from, to string) (float64, bool) {
	a, ok := g.byID[from]
	if !ok {
		return 0, false
	}
	b, ok := g.byID[to]
	if !ok {
		return 0, false
	}
	w, ok := g.weights[edgeKey{a.index, b.index}]
	return w, ok
}

// Reset clears the previous run from every node.
func (g *Graph) Reset() {
	g.ran = false
	g.source = ""
	for _, n := range g.nodes {
		n.reset()
	}
}

// ShortestPaths runs Dijkstra from source over the whole graph.
//
// The minimum is found with a linear scan over unfinalized nodes; on equal
// distances the node inserted first wins, which keeps paths deterministic.
// This is O(n²) and is intended for graphs of tens of locations.
func (g *Graph) ShortestPaths(source string) error {
	start, ok := g.byID[source]
	if !ok {
		return fmt.Errorf("shortest paths from %q: %w", source, domain.ErrLocationNotFound)
	}

	for _, n := range g.nodes {
		n.reset()
	}
	start.Distance = 0

	finalized := make([]bool, len(g.nodes))
	for range g.nodes {
		current := -1
		for i, n := range g.nodes {
			if finalized[i] {
				continue
			}
			if current < 0 || n.Distance < g.nodes[current].Distance {
				current = i
			}
		}
		finalized[current] = true

		u := g.nodes[current]
		if math.IsInf(u.Distance, 1) {
			continue
		}
		for _, j := range g.adjacency[current] {
			v := g.nodes[j]
			alt := u.Distance + g.weights[edgeKey{current, j}]
			if alt < v.Distance {
				v.Distance = alt
				v.Pred = u
			}
		}
	}

	g.ran = true
	g.source = source
	return nil
}

// ensure makes the node state reflect a run from source.
func (g *Graph) ensure(source string) error {
	if g.ran && g.source == source {
		return nil
	}
	g.Reset()
	return g.ShortestPaths(source)
}

// ShortestPath returns the node ids from source to destination inclusive.
func (g *Graph) ShortestPath(source, destination string) ([]string, error) {
	if !g.Has(source) {
		return nil, fmt.Errorf("shortest path from %q: %w", source, domain.ErrLocationNotFound)
	}
	end, ok := g.byID[destination]
	if !ok {
		return nil, fmt.Errorf("shortest path to %q: %w", destination, domain.ErrLocationNotFound)
	}
	if err := g.ensure(source); err != nil {
		return nil, err
	}
	if math.IsInf(end.Distance, 1) {
		return nil, fmt.Errorf("shortest path %q -> %q: %w", source, destination, ErrUnreachable)
	}

	var path []string
	for n := end; n != nil; n = n.Pred {
		path = append(path, n.ID)
		if n.ID == source {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Distance returns the shortest distance from source to destination.
// Unreachable destinations report +Inf.
func (g *Graph) Distance(source, destination string) (float64, error) {
	end, ok := g.byID[destination]
	if !ok {
		return 0, fmt.Errorf("distance to %q: %w", destination, domain.ErrLocationNotFound)
	}
	if err := g.ensure(source); err != nil {
		return 0, err
	}
	return end.Distance, nil
}
