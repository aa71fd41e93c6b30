package topology

import (
	"net"
	"strings"
)

// Path is a sequence of distinct switches. A single-element path
// means source and destination hang off the same switch.
type Path []DPID

func (path Path) String() string {
	hops := make([]string, len(path))
	for i, dpid := range path {
		hops[i] = dpid.String()
	}
	return strings.Join(hops, " -> ")
}

func (path Path) contains(dpid DPID) bool {
	for _, hop := range path {
		if hop == dpid {
			return true
		}
	}
	return false
}

// PathFinder enumerates simple paths between the switches at which
// two MAC addresses were learned.
//
// Paths come out in depth-first discovery order: neighbours are
// pushed in ascending dpid order, so the highest-numbered neighbour is
// explored first. No path is guaranteed to be the shortest; callers
// that want a single path take the first one.
type PathFinder struct {
	graph *Graph
	macs  *MacCache
}

func NewPathFinder(graph *Graph, macs *MacCache) *PathFinder {
	return &PathFinder{graph: graph, macs: macs}
}

// FindPaths returns every simple path from the switch srcMAC resolves
// to to the switch dstMAC resolves to. The result is empty if either
// MAC is unknown.
func (pf *PathFinder) FindPaths(srcMAC, dstMAC net.HardwareAddr) []Path {
	return pf.findPaths(srcMAC, dstMAC, 0)
}

// FirstPath returns FindPaths(srcMAC, dstMAC)[0] without enumerating
// the remaining paths.
func (pf *PathFinder) FirstPath(srcMAC, dstMAC net.HardwareAddr) (Path, bool) {
	paths := pf.findPaths(srcMAC, dstMAC, 1)
	if len(paths) == 0 {
		return nil, false
	}
	return paths[0], true
}

func (pf *PathFinder) findPaths(srcMAC, dstMAC net.HardwareAddr, limit int) []Path {
	src, found := pf.macs.ResolveSwitch(srcMAC)
	if !found {
		return nil
	}
	dst, found := pf.macs.ResolveSwitch(dstMAC)
	if !found {
		return nil
	}
	return pf.findSwitchPaths(src, dst, limit)
}

// FindSwitchPaths is FindPaths on switch identities.
func (pf *PathFinder) FindSwitchPaths(src, dst DPID) []Path {
	return pf.findSwitchPaths(src, dst, 0)
}

type frame struct {
	node DPID
	path Path
}

// Iterative depth-first enumeration over an explicit stack. A limit
// of zero means no limit.
func (pf *PathFinder) findSwitchPaths(src, dst DPID, limit int) []Path {
	if src == dst {
		return []Path{{src}}
	}

	var paths []Path
	stack := []frame{{node: src, path: Path{src}}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range pf.graph.Neighbors(top.node) {
			if top.path.contains(next) {
				continue
			}
			extended := make(Path, len(top.path)+1)
			copy(extended, top.path)
			extended[len(top.path)] = next
			if next == dst {
				paths = append(paths, extended)
				if limit > 0 && len(paths) >= limit {
					return paths
				}
			} else {
				stack = append(stack, frame{node: next, path: extended})
			}
		}
	}
	return paths
}
