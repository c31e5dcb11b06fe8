package curriculum

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Validate performs the structural checks on a curriculum document.
// Returns a combined error describing all problems found, or nil if valid.
// Prerequisite acyclicity is checked by the skillgraph package.
func Validate(f *File) error {
	var errs []string

	if !semver.IsValid(f.Version) {
		errs = append(errs, fmt.Sprintf("version %q is not a valid semantic version (expected e.g. v1.0.0)", f.Version))
	}
	if len(f.Subjects) == 0 {
		errs = append(errs, "no subjects declared")
	}

	seen := make(map[string]string)
	claim := func(kind, id string) {
		if id == "" {
			errs = append(errs, fmt.Sprintf("%s with empty id", kind))
			return
		}
		if prev, ok := seen[id]; ok {
			errs = append(errs, fmt.Sprintf("duplicate id %q (%s and %s)", id, prev, kind))
			return
		}
		seen[id] = kind
	}

	types := make(map[string]EntityType)
	for _, subj := range f.Subjects {
		claim("subject", subj.ID)
		for _, u := range subj.Units {
			claim("unit", u.ID)
			for _, sk := range u.Skills {
				claim("skill", sk.ID)
				types[sk.ID] = EntitySkill
				if len(sk.Subskills) == 0 {
					errs = append(errs, fmt.Sprintf("skill %q declares no subskills", sk.ID))
				}
				for _, ss := range sk.Subskills {
					claim("subskill", ss.ID)
					types[ss.ID] = EntitySubskill
					d := ss.Difficulty
					if d.Start > d.Target || d.Target > d.End {
						errs = append(errs, fmt.Sprintf("subskill %q: difficulty must satisfy start <= target <= end, got %g/%g/%g", ss.ID, d.Start, d.Target, d.End))
					}
				}
			}
		}
	}

	for i, e := range f.Prerequisites {
		prefix := fmt.Sprintf("prerequisite %d (%s -> %s)", i, e.Prerequisite, e.Unlocks)
		if t, ok := types[e.Prerequisite]; !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown prerequisite %q", prefix, e.Prerequisite))
		} else if e.PrerequisiteType != t {
			errs = append(errs, fmt.Sprintf("%s: prerequisite is a %s, declared %q", prefix, t, e.PrerequisiteType))
		}
		if t, ok := types[e.Unlocks]; !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown target %q", prefix, e.Unlocks))
		} else if e.UnlocksType != t {
			errs = append(errs, fmt.Sprintf("%s: target is a %s, declared %q", prefix, t, e.UnlocksType))
		}
		if e.Prerequisite == e.Unlocks && e.PrerequisiteType == e.UnlocksType {
			errs = append(errs, fmt.Sprintf("%s: entity cannot be its own prerequisite", prefix))
		}
		if e.Threshold < 0 || e.Threshold > 1 {
			errs = append(errs, fmt.Sprintf("%s: threshold must be in [0, 1], got %g", prefix, e.Threshold))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
