// Package graph holds the file-level import graph and the traversals the
// collectors run over it: cycle detection, in-degree and reachability.
package graph

import (
	"sort"
	"strings"
)

// ImportGraph represents the resolved import relationships between files.
type ImportGraph struct {
	Nodes map[string]*FileNode
}

// FileNode represents a single source file in the import graph.
type FileNode struct {
	Path       string
	Imports    []string // outgoing edges to files inside the root
	ImportedBy []string // incoming edges
	External   []string // bare package specifiers, never edges
	Unresolved []string // relative specifiers that matched no file
}

// New returns an empty graph.
func New() *ImportGraph {
	return &ImportGraph{Nodes: make(map[string]*FileNode)}
}

// AddFile registers a node. Adding an existing path is a no-op.
func (g *ImportGraph) AddFile(path string) *FileNode {
	if n, ok := g.Nodes[path]; ok {
		return n
	}
	n := &FileNode{Path: path}
	g.Nodes[path] = n
	return n
}

// AddEdge records that from imports to. Self-edges and duplicates are dropped.
// Both endpoints are created if missing.
func (g *ImportGraph) AddEdge(from, to string) {
	if from == to {
		return
	}
	src := g.AddFile(from)
	dst := g.AddFile(to)
	if !containsString(src.Imports, to) {
		src.Imports = append(src.Imports, to)
	}
	if !containsString(dst.ImportedBy, from) {
		dst.ImportedBy = append(dst.ImportedBy, from)
	}
}

// AddExternal records a bare package reference for a file.
func (g *ImportGraph) AddExternal(from, specifier string) {
	n := g.AddFile(from)
	if !containsString(n.External, specifier) {
		n.External = append(n.External, specifier)
	}
}

// AddUnresolved records a relative specifier that could not be resolved.
func (g *ImportGraph) AddUnresolved(from, specifier string) {
	n := g.AddFile(from)
	if !containsString(n.Unresolved, specifier) {
		n.Unresolved = append(n.Unresolved, specifier)
	}
}

// Seal sorts every adjacency list so traversals are deterministic. The
// scanner calls it once before handing the graph to collectors.
func (g *ImportGraph) Seal() {
	for _, n := range g.Nodes {
		sort.Strings(n.Imports)
		sort.Strings(n.ImportedBy)
		sort.Strings(n.External)
		sort.Strings(n.Unresolved)
	}
}

// Paths returns every node path in sorted order.
func (g *ImportGraph) Paths() []string {
	if g == nil {
		return nil
	}
	keys := make([]string, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InDegree returns the number of files importing path.
func (g *ImportGraph) InDegree(path string) int {
	if g == nil {
		return 0
	}
	if n, ok := g.Nodes[path]; ok {
		return len(n.ImportedBy)
	}
	return 0
}

// EdgeCount returns the total number of directed edges in the graph.
func (g *ImportGraph) EdgeCount() int {
	if g == nil {
		return 0
	}
	total := 0
	for _, node := range g.Nodes {
		total += len(node.Imports)
	}
	return total
}

// maxCyclesPerComponent bounds enumeration inside one strongly connected
// component; dense components can hold exponentially many cycles.
const maxCyclesPerComponent = 100

// DetectCycles lists the distinct elementary import cycles. Strongly
// connected components are found with Tarjan's algorithm and the cycles of
// each component are enumerated with Johnson's algorithm. Each cycle starts
// at its smallest path, so A→B→C→A is reported once regardless of entry.
func (g *ImportGraph) DetectCycles() [][]string {
	if g == nil || len(g.Nodes) == 0 {
		return nil
	}

	var cycles [][]string
	seen := make(map[string]bool)
	for _, comp := range g.components() {
		for _, c := range g.componentCycles(comp) {
			normalized := normalizeCycle(c)
			key := strings.Join(normalized, "\x00")
			if !seen[key] {
				seen[key] = true
				cycles = append(cycles, normalized)
			}
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i], "\x00") < strings.Join(cycles[j], "\x00")
	})
	return cycles
}

// components returns the strongly connected components with more than one
// node, each sorted by path.
func (g *ImportGraph) components() [][]string {
	var (
		index   = make(map[string]int, len(g.Nodes))
		low     = make(map[string]int, len(g.Nodes))
		onStack = make(map[string]bool)
		stack   []string
		next    int
		comps   [][]string
	)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true

		if node := g.Nodes[v]; node != nil {
			for _, w := range node.Imports {
				if _, visited := index[w]; !visited {
					strongConnect(w)
					low[v] = min(low[v], low[w])
				} else if onStack[w] {
					low[v] = min(low[v], index[w])
				}
			}
		}

		if low[v] != index[v] {
			return
		}
		var comp []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		if len(comp) > 1 {
			sort.Strings(comp)
			comps = append(comps, comp)
		}
	}

	for _, p := range g.Paths() {
		if _, visited := index[p]; !visited {
			strongConnect(p)
		}
	}
	return comps
}

// componentCycles enumerates the elementary cycles of one component. For
// each start node s only nodes after s are used, so every cycle is found
// exactly once, starting at its smallest member.
func (g *ImportGraph) componentCycles(comp []string) [][]string {
	pos := make(map[string]int, len(comp))
	for i, p := range comp {
		pos[p] = i
	}
	adj := make([][]int, len(comp))
	for i, p := range comp {
		for _, w := range g.Nodes[p].Imports {
			if j, ok := pos[w]; ok {
				adj[i] = append(adj[i], j)
			}
		}
		sort.Ints(adj[i])
	}

	var (
		cycles  [][]string
		path    []int
		blocked = make([]bool, len(comp))
		blockOn = make([]map[int]bool, len(comp))
	)

	var unblock func(u int)
	unblock = func(u int) {
		blocked[u] = false
		for w := range blockOn[u] {
			delete(blockOn[u], w)
			if blocked[w] {
				unblock(w)
			}
		}
	}

	for s := range comp {
		for i := s; i < len(comp); i++ {
			blocked[i] = false
			blockOn[i] = make(map[int]bool)
		}

		var circuit func(v int) bool
		circuit = func(v int) bool {
			found := false
			path = append(path, v)
			blocked[v] = true
			for _, w := range adj[v] {
				if w < s || len(cycles) >= maxCyclesPerComponent {
					continue
				}
				if w == s {
					c := make([]string, len(path))
					for k, idx := range path {
						c[k] = comp[idx]
					}
					cycles = append(cycles, c)
					found = true
				} else if !blocked[w] && circuit(w) {
					found = true
				}
			}
			if found {
				unblock(v)
			} else {
				for _, w := range adj[v] {
					if w >= s {
						blockOn[w][v] = true
					}
				}
			}
			path = path[:len(path)-1]
			return found
		}

		circuit(s)
		if len(cycles) >= maxCyclesPerComponent {
			break
		}
	}
	return cycles
}

// normalizeCycle rotates a cycle so the lexicographically smallest element is first.
func normalizeCycle(cycle []string) []string {
	if len(cycle) == 0 {
		return cycle
	}
	minIdx := 0
	for i, s := range cycle {
		if s < cycle[minIdx] {
			minIdx = i
		}
	}
	result := make([]string, len(cycle))
	for i := range cycle {
		result[i] = cycle[(minIdx+i)%len(cycle)]
	}
	return result
}

// Reachable returns the set of nodes reachable from any of the roots,
// roots included.
func (g *ImportGraph) Reachable(roots []string) map[string]bool {
	seen := make(map[string]bool)
	if g == nil {
		return seen
	}
	stack := make([]string, 0, len(roots))
	for _, r := range roots {
		if _, ok := g.Nodes[r]; ok && !seen[r] {
			seen[r] = true
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range g.Nodes[u].Imports {
			if !seen[v] {
				seen[v] = true
				stack = append(stack, v)
			}
		}
	}
	return seen
}

// CycleMembers returns every node that participates in at least one cycle.
func CycleMembers(cycles [][]string) map[string]bool {
	set := make(map[string]bool)
	for _, cycle := range cycles {
		for _, p := range cycle {
			set[p] = true
		}
	}
	return set
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
