package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// Projects is the canonical project registry. The order in which projects
// are declared is the build and release order used by Project.Compare.
//
// Dependencies are held as an arena of nodes with adjacency lists. The graph
// must be acyclic; transitive closures are computed once on construction.
type Projects struct {
	list  []*Project
	byKey map[string]*Project
	adj   [][]int
	topo  []*Project
}

// NewProjects builds the registry from specs in canonical order.
// Unknown or duplicate keys, shared repositories, self-references and cycles
// are rejected with an INVALID_CONFIGURATION error. Repository names are
// compared case-insensitively since each one names a mirror directory.
func NewProjects(specs []ProjectSpec) (*Projects, error) {
	ps := &Projects{
		list:  make([]*Project, 0, len(specs)),
		byKey: make(map[string]*Project, len(specs)),
		adj:   make([][]int, len(specs)),
	}
	byRepo := make(map[string]*Project, len(specs))

	for i, spec := range specs {
		key := strings.TrimSpace(spec.Key)
		if key == "" {
			return nil, errors.Newf(errors.CodeInvalidConfig, "project at position %d has no key", i)
		}
		if spec.Name == "" {
			return nil, errors.Newf(errors.CodeInvalidConfig, "project %q has no name", key)
		}
		if _, dup := ps.byKey[key]; dup {
			return nil, errors.Newf(errors.CodeInvalidConfig, "project %q declared more than once", key)
		}
		spec.Key = key
		p := newProject(spec, i)
		repo := strings.ToLower(p.repository)
		if other, dup := byRepo[repo]; dup {
			return nil, repositoryConflict(other, p)
		}
		byRepo[repo] = p
		ps.list = append(ps.list, p)
		ps.byKey[key] = p
	}

	for i, spec := range specs {
		seen := make(map[int]bool, len(spec.Dependencies))
		for _, depKey := range spec.Dependencies {
			dep, ok := ps.byKey[depKey]
			if !ok {
				return nil, errors.Newf(errors.CodeInvalidConfig,
					"project %q depends on unknown project %q", ps.list[i].key, depKey)
			}
			if dep.index == i {
				return nil, errors.Newf(errors.CodeInvalidConfig, "project %q depends on itself", ps.list[i].key)
			}
			if seen[dep.index] {
				continue
			}
			seen[dep.index] = true
			ps.adj[i] = append(ps.adj[i], dep.index)
		}
		sort.Ints(ps.adj[i])
	}

	if err := ps.checkAcyclic(); err != nil {
		return nil, err
	}

	ps.computeClosures()
	ps.topo = ps.topologicalOrder()
	return ps, nil
}

const (
	white = iota
	gray
	black
)

type frame struct {
	node int
	next int
}

// checkAcyclic runs an iterative depth-first search over every node and
// reports the first cycle found.
func (ps *Projects) checkAcyclic() error {
	color := make([]int, len(ps.list))

	for root := range ps.list {
		if color[root] != white {
			continue
		}

		stack := []frame{{node: root}}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(ps.adj[top.node]) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}

			dep := ps.adj[top.node][top.next]
			top.next++

			switch color[dep] {
			case white:
				color[dep] = gray
				stack = append(stack, frame{node: dep})
			case gray:
				return ps.cycleError(stack, dep)
			}
		}
	}
	return nil
}

func (ps *Projects) cycleError(stack []frame, entry int) error {
	var path []string
	for i := range stack {
		if stack[i].node == entry {
			for _, f := range stack[i:] {
				path = append(path, ps.list[f.node].key)
			}
			break
		}
	}
	path = append(path, ps.list[entry].key)
	return &errors.ForgeError{
		Code:    errors.CodeInvalidConfig,
		Message: "dependency cycle: " + strings.Join(path, " -> "),
		Context: map[string]interface{}{"cycle": path},
	}
}

func repositoryConflict(first, second *Project) error {
	return &errors.ForgeError{
		Code: errors.CodeInvalidConfig,
		Message: fmt.Sprintf("repository %q of project %q is already used by project %q",
			second.repository, second.key, first.key),
		Context: map[string]interface{}{
			"repository": second.repository,
			"projects":   []string{first.key, second.key},
		},
	}
}

// computeClosures fills each project's transitive dependencies. Nodes are
// visited dependencies-first so every direct dependency is complete when used.
func (ps *Projects) computeClosures() {
	order := ps.postOrder()
	reach := make([][]bool, len(ps.list))

	for _, n := range order {
		reach[n] = make([]bool, len(ps.list))
		for _, dep := range ps.adj[n] {
			reach[n][dep] = true
			for j, ok := range reach[dep] {
				if ok {
					reach[n][j] = true
				}
			}
		}
	}

	for n, p := range ps.list {
		p.direct = make([]*Project, 0, len(ps.adj[n]))
		for _, dep := range ps.adj[n] {
			p.direct = append(p.direct, ps.list[dep])
		}
		p.closureSet = make(map[*Project]struct{})
		for j, ok := range reach[n] {
			if ok {
				p.closure = append(p.closure, ps.list[j])
				p.closureSet[ps.list[j]] = struct{}{}
			}
		}
	}
}

// postOrder returns node indexes with every node after its dependencies.
func (ps *Projects) postOrder() []int {
	visited := make([]bool, len(ps.list))
	order := make([]int, 0, len(ps.list))

	for root := range ps.list {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(ps.adj[top.node]) {
				order = append(order, top.node)
				stack = stack[:len(stack)-1]
				continue
			}
			dep := ps.adj[top.node][top.next]
			top.next++
			if !visited[dep] {
				visited[dep] = true
				stack = append(stack, frame{node: dep})
			}
		}
	}
	return order
}

// topologicalOrder emits, at each step, the lowest-index project whose
// dependencies have all been emitted.
func (ps *Projects) topologicalOrder() []*Project {
	emitted := make([]bool, len(ps.list))
	out := make([]*Project, 0, len(ps.list))

	for len(out) < len(ps.list) {
		for n := range ps.list {
			if emitted[n] {
				continue
			}
			ready := true
			for _, dep := range ps.adj[n] {
				if !emitted[dep] {
					ready = false
					break
				}
			}
			if ready {
				emitted[n] = true
				out = append(out, ps.list[n])
				break
			}
		}
	}
	return out
}

// All returns every project in canonical order.
func (ps *Projects) All() []*Project {
	return append([]*Project(nil), ps.list...)
}

// Len returns the number of projects.
func (ps *Projects) Len() int { return len(ps.list) }

// Get returns the project with the given key.
func (ps *Projects) Get(key string) (*Project, error) {
	p, ok := ps.byKey[key]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "project %q not found", key)
	}
	return p, nil
}

// MustGet is like Get but panics when the project is unknown.
func (ps *Projects) MustGet(key string) *Project {
	p, err := ps.Get(key)
	if err != nil {
		panic(err)
	}
	return p
}

// Contains reports whether p belongs to this registry.
func (ps *Projects) Contains(p *Project) bool {
	return p != nil && p.index < len(ps.list) && ps.list[p.index] == p
}

// TopologicalOrder returns the projects with dependencies before dependents,
// ties broken by canonical order.
func (ps *Projects) TopologicalOrder() []*Project {
	return append([]*Project(nil), ps.topo...)
}

// Dependents returns the projects that depend on p, directly or transitively,
// in canonical order.
func (ps *Projects) Dependents(p *Project) []*Project {
	var out []*Project
	for _, candidate := range ps.list {
		if candidate.DependsOn(p) {
			out = append(out, candidate)
		}
	}
	return out
}
