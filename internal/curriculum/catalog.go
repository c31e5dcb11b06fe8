// Package curriculum holds the static subject → unit → skill → subskill
// catalog that every other component resolves entity ids against.
package curriculum

import (
	"fmt"
	"slices"
)

// EntityType distinguishes the two kinds of graph nodes.
type EntityType string

const (
	EntitySkill    EntityType = "skill"
	EntitySubskill EntityType = "subskill"
)

// ParseEntityType maps user input to an EntityType. Empty input returns "".
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "":
		return "", nil
	case "skill", "Skill":
		return EntitySkill, nil
	case "subskill", "Subskill":
		return EntitySubskill, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// DifficultyRange is the declared difficulty band of a subskill.
type DifficultyRange struct {
	Start  float64 `json:"start" yaml:"start"`
	Target float64 `json:"target" yaml:"target"`
	End    float64 `json:"end" yaml:"end"`
}

// Clamp limits d to the range.
func (r DifficultyRange) Clamp(d float64) float64 {
	if d < r.Start {
		return r.Start
	}
	if d > r.End {
		return r.End
	}
	return d
}

type Subject struct {
	ID    string
	Name  string
	Units []string
}

type Unit struct {
	ID        string
	Name      string
	SubjectID string
	Skills    []string
}

type Skill struct {
	ID          string
	Description string
	UnitID      string
	SubjectID   string
	Subskills   []string
}

type Subskill struct {
	ID          string
	Description string
	SkillID     string
	UnitID      string
	SubjectID   string
	Difficulty  DifficultyRange
}

// Entity is the type-erased view of a skill or subskill.
type Entity struct {
	ID          string
	Type        EntityType
	SubjectID   string
	Description string
}

// Catalog is immutable once built. All accessors return copies.
type Catalog struct {
	version   string
	subjects  []Subject
	bySubject map[string]*Subject
	units     map[string]*Unit
	skills    map[string]*Skill
	subskills map[string]*Subskill
}

// Version returns the curriculum's semantic version ("v1.2.0").
func (c *Catalog) Version() string {
	return c.version
}

// Subjects returns all subjects in file order.
func (c *Catalog) Subjects() []Subject {
	return slices.Clone(c.subjects)
}

// SubjectIDs returns the ids of all subjects in file order.
func (c *Catalog) SubjectIDs() []string {
	ids := make([]string, len(c.subjects))
	for i, s := range c.subjects {
		ids[i] = s.ID
	}
	return ids
}

func (c *Catalog) Subject(id string) (Subject, bool) {
	s, ok := c.bySubject[id]
	if !ok {
		return Subject{}, false
	}
	return *s, true
}

func (c *Catalog) Unit(id string) (Unit, bool) {
	u, ok := c.units[id]
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

func (c *Catalog) Skill(id string) (Skill, bool) {
	s, ok := c.skills[id]
	if !ok {
		return Skill{}, false
	}
	return *s, true
}

func (c *Catalog) Subskill(id string) (Subskill, bool) {
	s, ok := c.subskills[id]
	if !ok {
		return Subskill{}, false
	}
	return *s, true
}

// SubskillsOf returns the subskills declared under a skill. Unknown skills
// have no subskills.
func (c *Catalog) SubskillsOf(skillID string) []Subskill {
	sk, ok := c.skills[skillID]
	if !ok {
		return nil
	}
	out := make([]Subskill, 0, len(sk.Subskills))
	for _, id := range sk.Subskills {
		out = append(out, *c.subskills[id])
	}
	return out
}

// SkillOf returns the parent skill of a subskill.
func (c *Catalog) SkillOf(subskillID string) (Skill, bool) {
	ss, ok := c.subskills[subskillID]
	if !ok {
		return Skill{}, false
	}
	return c.Skill(ss.SkillID)
}

// UnitsOf returns the units of a subject in declaration order.
func (c *Catalog) UnitsOf(subjectID string) []Unit {
	s, ok := c.bySubject[subjectID]
	if !ok {
		return nil
	}
	out := make([]Unit, 0, len(s.Units))
	for _, id := range s.Units {
		out = append(out, *c.units[id])
	}
	return out
}

// SkillsOfUnit returns the skills of a unit in declaration order.
func (c *Catalog) SkillsOfUnit(unitID string) []Skill {
	u, ok := c.units[unitID]
	if !ok {
		return nil
	}
	out := make([]Skill, 0, len(u.Skills))
	for _, id := range u.Skills {
		out = append(out, *c.skills[id])
	}
	return out
}

// SkillsOf returns every skill of a subject, or of all subjects when
// subjectID is empty.
func (c *Catalog) SkillsOf(subjectID string) []Skill {
	var out []Skill
	for _, s := range c.subjects {
		if subjectID != "" && s.ID != subjectID {
			continue
		}
		for _, u := range s.Units {
			out = append(out, c.SkillsOfUnit(u)...)
		}
	}
	return out
}

// SubskillsOfSubject returns every subskill of a subject, or of all
// subjects when subjectID is empty.
func (c *Catalog) SubskillsOfSubject(subjectID string) []Subskill {
	var out []Subskill
	for _, sk := range c.SkillsOf(subjectID) {
		out = append(out, c.SubskillsOf(sk.ID)...)
	}
	return out
}

// Entity resolves an id of the given type.
func (c *Catalog) Entity(id string, typ EntityType) (Entity, bool) {
	switch typ {
	case EntitySkill:
		if s, ok := c.skills[id]; ok {
			return Entity{ID: s.ID, Type: EntitySkill, SubjectID: s.SubjectID, Description: s.Description}, true
		}
	case EntitySubskill:
		if s, ok := c.subskills[id]; ok {
			return Entity{ID: s.ID, Type: EntitySubskill, SubjectID: s.SubjectID, Description: s.Description}, true
		}
	}
	return Entity{}, false
}

// Entities returns every skill and subskill of a subject (all subjects when
// empty), optionally restricted to one type.
func (c *Catalog) Entities(subjectID string, typ EntityType) []Entity {
	var out []Entity
	for _, sk := range c.SkillsOf(subjectID) {
		if typ == "" || typ == EntitySkill {
			out = append(out, Entity{ID: sk.ID, Type: EntitySkill, SubjectID: sk.SubjectID, Description: sk.Description})
		}
		if typ == "" || typ == EntitySubskill {
			for _, ss := range c.SubskillsOf(sk.ID) {
				out = append(out, Entity{ID: ss.ID, Type: EntitySubskill, SubjectID: ss.SubjectID, Description: ss.Description})
			}
		}
	}
	return out
}
