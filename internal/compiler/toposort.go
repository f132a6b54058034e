package compiler

import (
	"fmt"
	"sort"

	"github.com/corintai/corint/internal/ast"
)

// topoSortSteps orders a pipeline's reachable steps via Kahn's algorithm,
// mirroring the teacher's level-by-level DAG sort: compute indegree over
// the reachable subgraph, repeatedly drain the zero-indegree frontier in
// id order for determinism. The pipeline is already known acyclic (the
// analyzer's E007 check runs before codegen), so this never reports a
// cycle in practice; it still returns an error rather than panicking if
// codegen is ever invoked on an unanalyzed pipeline.
func topoSortSteps(p ast.Pipeline) ([]ast.Step, error) {
	reachable := p.ReachableFromEntry()
	byID := make(map[string]ast.Step, len(reachable))
	for _, s := range p.Steps {
		if reachable[s.ID] {
			byID[s.ID] = s
		}
	}

	indegree := make(map[string]int, len(byID))
	for id := range byID {
		indegree[id] = 0
	}
	for _, s := range byID {
		for _, target := range s.Targets() {
			if _, ok := byID[target]; ok {
				indegree[target]++
			}
		}
	}

	var frontier []string
	for id, deg := range indegree {
		if deg == 0 {
			frontier = append(frontier, id)
		}
	}
	sort.Strings(frontier)

	var ordered []ast.Step
	for len(frontier) > 0 {
		sort.Strings(frontier)
		id := frontier[0]
		frontier = frontier[1:]

		ordered = append(ordered, byID[id])
		for _, target := range byID[id].Targets() {
			if _, ok := byID[target]; !ok {
				continue
			}
			indegree[target]--
			if indegree[target] == 0 {
				frontier = append(frontier, target)
			}
		}
	}

	if len(ordered) != len(byID) {
		return nil, fmt.Errorf("compiler: cycle detected among reachable steps of pipeline %q", p.ID)
	}
	return ordered, nil
}
