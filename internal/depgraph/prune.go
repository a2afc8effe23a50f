// SPDX-License-Identifier: MPL-2.0

package depgraph

import "sort"

// Prune returns the subset of libs that belongs in the final archive.
//
// Libraries flagged optional are dropped outright. A required library whose
// dependents all ended up in the dropped set is itself only reachable through
// optional consumers, so it is dropped too; this propagates until a pass
// moves nothing. A required library with no dependents is a root and is never
// pruned. When nothing is optional the input map is returned unchanged.
func Prune(libs LibraryMap) LibraryMap {
	required := make(LibraryMap, len(libs))
	optional := make(map[Coordinate]bool)

	for coord, lib := range libs {
		if lib.Optional {
			optional[coord] = true
		} else {
			required[coord] = lib
		}
	}

	if len(optional) == 0 {
		return libs
	}

	for moved := true; moved; {
		moved = false
		for _, coord := range sortedCoordinates(required) {
			lib := required[coord]
			if len(lib.Dependents) == 0 {
				continue
			}
			if !allOptional(lib.Dependents, optional, libs) {
				continue
			}
			delete(required, coord)
			optional[coord] = true
			moved = true
		}
	}

	return required
}

// allOptional reports whether every dependent is currently in the optional
// set. A dependent naming a coordinate we never resolved counts as required:
// we cannot prove it optional, so the library stays.
func allOptional(dependents []Coordinate, optional map[Coordinate]bool, libs LibraryMap) bool {
	for _, dep := range dependents {
		if _, known := libs[dep]; !known {
			return false
		}
		if !optional[dep] {
			return false
		}
	}
	return true
}

// SourcePaths flattens the map into the ordered list of content paths to
// merge. Coordinates are ordered lexically so the merge order (and therefore
// first-writer-wins conflict resolution) is deterministic across runs.
func (libs LibraryMap) SourcePaths() []string {
	var paths []string
	for _, coord := range sortedCoordinates(libs) {
		paths = append(paths, libs[coord].Paths...)
	}
	return paths
}

func sortedCoordinates(libs LibraryMap) []Coordinate {
	coords := make([]Coordinate, 0, len(libs))
	for coord := range libs {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i] < coords[j] })
	return coords
}
