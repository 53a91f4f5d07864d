package interchanges

// Path is ordered sequence of node IDs from source to target
type Path []string

// ReconstructPath walks predecessor chain from target back to the route's source.
// Returns false if target is unreachable. Target equal to source yields trivial single-node path.
func ReconstructPath(route Route, target string) (Path, bool) {
	entry, ok := route.Entry(target)
	if !ok {
		return nil, false
	}
	reversed := Path{target}
	current := target
	// Predecessor chain is acyclic, so it is bounded by the number of reached nodes
	for steps := 0; current != route.Source; steps++ {
		if entry.Predecessor == "" || steps > route.Len() {
			return nil, false
		}
		current = entry.Predecessor
		reversed = append(reversed, current)
		entry, ok = route.Entry(current)
		if !ok {
			return nil, false
		}
	}
	path := make(Path, len(reversed))
	for i, node := range reversed {
		path[len(reversed)-1-i] = node
	}
	return path, true
}

// ExtractElevatorIDs returns facility IDs of elevators used along the path (source to target).
// IDs are unique and ordered by first traversal.
func ExtractElevatorIDs(g *Graph, path Path) []string {
	ids := []string{}
	seen := make(map[string]struct{})
	for i := 1; i < len(path); i++ {
		label, ok := g.Edge(path[i-1], path[i])
		if !ok || !label.IsElevator || label.ElevatorID == "" {
			continue
		}
		if _, ok := seen[label.ElevatorID]; ok {
			continue
		}
		seen[label.ElevatorID] = struct{}{}
		ids = append(ids, label.ElevatorID)
	}
	return ids
}
