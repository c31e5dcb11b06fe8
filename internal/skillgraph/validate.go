package skillgraph

import (
	"fmt"
	"strings"

	"github.com/abhisek/kinderpath/internal/curriculum"
)

// validateEdges performs the per-edge structural checks. Cycles are
// detected separately while building the topological order.
func validateEdges(edges []Edge) error {
	var errs []string
	seen := make(map[string]bool, len(edges))

	for i, e := range edges {
		prefix := fmt.Sprintf("edge %d (%s -> %s)", i, e.Prerequisite, e.Unlocks)
		if e.Prerequisite.ID == "" || e.Unlocks.ID == "" {
			errs = append(errs, prefix+": empty entity id")
		}
		for _, r := range []Ref{e.Prerequisite, e.Unlocks} {
			if r.Type != curriculum.EntitySkill && r.Type != curriculum.EntitySubskill {
				errs = append(errs, fmt.Sprintf("%s: invalid entity type %q", prefix, r.Type))
			}
		}
		if e.Prerequisite == e.Unlocks {
			errs = append(errs, prefix+": entity cannot be its own prerequisite")
		}
		if e.Threshold < 0 || e.Threshold > 1 {
			errs = append(errs, fmt.Sprintf("%s: threshold must be in [0, 1], got %g", prefix, e.Threshold))
		}
		if seen[e.key()] {
			errs = append(errs, prefix+": duplicate edge")
		}
		seen[e.key()] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("prerequisite graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Validate checks edges for structural problems and cycles without
// building a graph. Draft edges are included in the cycle check so that
// publishing a draft can never introduce one.
func Validate(edges []Edge) error {
	if err := validateEdges(edges); err != nil {
		return err
	}
	if _, stuck := kahn(edges); len(stuck) > 0 {
		return &CycleError{Nodes: stuck}
	}
	return nil
}

// CheckCatalog reports edges whose endpoints are missing from the catalog.
func CheckCatalog(edges []Edge, cat *curriculum.Catalog) error {
	var errs []string
	for i, e := range edges {
		for _, r := range []Ref{e.Prerequisite, e.Unlocks} {
			if _, ok := cat.Entity(r.ID, r.Type); !ok {
				errs = append(errs, fmt.Sprintf("edge %d references unknown %s %q", i, r.Type, r.ID))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("prerequisite graph does not match curriculum %s:\n  %s", cat.Version(), strings.Join(errs, "\n  "))
	}
	return nil
}
