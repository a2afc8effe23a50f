// SPDX-License-Identifier: MPL-2.0

// Package depgraph models the resolved library set handed to the assembler
// and decides which libraries end up inside the uberjar. The dependency
// relation between libraries is acyclic by construction (the external
// resolver guarantees it), but it is validated defensively before use.
package depgraph

import (
	"fmt"
	"strings"
)

type (
	// Coordinate identifies one resolved library (group/name/version or
	// whatever opaque form the resolver emits).
	Coordinate string

	// Library is one node of the resolved dependency set.
	Library struct {
		// Paths are the filesystem locations contributing content for this
		// library, in declared order. Each is either a jar file or an
		// exploded directory.
		Paths []string

		// Optional is true when the library is only required by optional
		// consumers.
		Optional bool

		// Dependents are the coordinates that directly depend on this
		// library. Never contains the library's own coordinate.
		Dependents []Coordinate
	}

	// LibraryMap maps coordinates to resolved libraries. It is read-only to
	// this package; pruning returns a new map.
	LibraryMap map[Coordinate]Library

	// CycleError indicates that the dependents relation contains a cycle,
	// which the external resolver must never produce.
	CycleError struct {
		// Cycle contains the coordinates involved (not necessarily all of
		// them, but enough to identify the problem).
		Cycle []Coordinate
	}
)

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, c := range e.Cycle {
		parts[i] = string(c)
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " -> "))
}

// ValidateAcyclic checks the dependents relation for self-loops and cycles
// using Kahn's algorithm. Coordinates named as dependents but absent from the
// map are ignored (they cannot close a cycle through nodes we hold).
func (libs LibraryMap) ValidateAcyclic() error {
	coords := sortedCoordinates(libs)

	// Self-loops are rejected up front so the report names the exact node.
	for _, coord := range coords {
		for _, dep := range libs[coord].Dependents {
			if dep == coord {
				return &CycleError{Cycle: []Coordinate{coord, coord}}
			}
		}
	}

	// Edge dependent -> library ("dependent pulls in library"). Direction is
	// irrelevant for cycle detection; this keeps in-degrees cheap to seed.
	inDegree := make(map[Coordinate]int, len(libs))
	for _, coord := range coords {
		inDegree[coord] += 0
		for _, dep := range libs[coord].Dependents {
			if _, known := libs[dep]; known {
				inDegree[coord]++
			}
		}
	}

	queue := make([]Coordinate, 0, len(libs))
	for _, coord := range coords {
		if inDegree[coord] == 0 {
			queue = append(queue, coord)
		}
	}

	visited := 0
	adjacency := make(map[Coordinate][]Coordinate, len(libs))
	for _, coord := range coords {
		for _, dep := range libs[coord].Dependents {
			if _, known := libs[dep]; known {
				adjacency[dep] = append(adjacency[dep], coord)
			}
		}
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++

		for _, next := range adjacency[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited != len(libs) {
		var cycle []Coordinate
		for _, coord := range coords {
			if inDegree[coord] > 0 {
				cycle = append(cycle, coord)
			}
		}
		return &CycleError{Cycle: cycle}
	}

	return nil
}
