package assemble

import (
	"fmt"

	"github.com/vk/loom/internal/registry"
)

// Order sorts modules so that every declared dependency contributes before
// its dependents. Among modules with no ordering constraint between them
// the tie-break is stable registration order, which keeps assembly
// deterministic for identical input regardless of how the modules were
// discovered.
func Order(mods []*registry.Descriptor) ([]*registry.Descriptor, error) {
	index := make(map[string]int, len(mods))
	for i, m := range mods {
		index[m.Name] = i
	}

	// indegree counts unmet dependencies; dependents is the reverse edge
	// list, both keyed by registration position.
	indegree := make([]int, len(mods))
	dependents := make([][]int, len(mods))
	for i, m := range mods {
		for _, dep := range m.DependsOn {
			j, ok := index[dep]
			if !ok {
				return nil, &Error{
					Module: m.Name,
					Err:    fmt.Errorf("depends on unregistered module %q", dep),
				}
			}
			if j == i {
				return nil, &Error{Module: m.Name, Err: fmt.Errorf("depends on itself")}
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ordered := make([]*registry.Descriptor, 0, len(mods))
	done := make([]bool, len(mods))
	for len(ordered) < len(mods) {
		// Pick the lowest registration index among ready modules. A heap
		// would be faster; module counts make the scan irrelevant.
		next := -1
		for i := range mods {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			for i := range mods {
				if !done[i] {
					return nil, &Error{
						Module: mods[i].Name,
						Err:    fmt.Errorf("dependency cycle involving module %q", mods[i].Name),
					}
				}
			}
		}
		done[next] = true
		ordered = append(ordered, mods[next])
		for _, dep := range dependents[next] {
			indegree[dep]--
		}
	}

	return ordered, nil
}
