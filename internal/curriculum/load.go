package curriculum

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// File is the on-disk curriculum document.
type File struct {
	Version       string        `yaml:"version"`
	Subjects      []SubjectSpec `yaml:"subjects"`
	Prerequisites []EdgeSpec    `yaml:"prerequisites"`
}

type SubjectSpec struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Units []UnitSpec `yaml:"units"`
}

type UnitSpec struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Skills []SkillSpec `yaml:"skills"`
}

type SkillSpec struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description"`
	Subskills   []SubskillSpec `yaml:"subskills"`
}

type SubskillSpec struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	Difficulty  DifficultyRange `yaml:"difficulty"`
}

// EdgeSpec declares one prerequisite relationship. Threshold is a unit
// proficiency the prerequisite must reach.
type EdgeSpec struct {
	Prerequisite     string     `yaml:"prerequisite"`
	PrerequisiteType EntityType `yaml:"prerequisite_type"`
	Unlocks          string     `yaml:"unlocks"`
	UnlocksType      EntityType `yaml:"unlocks_type"`
	Threshold        float64    `yaml:"threshold"`
	Draft            bool       `yaml:"draft"`
}

// Parse decodes a curriculum document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	return &f, nil
}

// ReadFile reads and decodes a curriculum document from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	return Parse(data)
}

// Seed returns the embedded kindergarten curriculum.
func Seed() (*File, error) {
	return Parse(seedYAML)
}

// Build validates a document and indexes it into a Catalog.
func Build(f *File) (*Catalog, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	c := &Catalog{
		version:   f.Version,
		bySubject: make(map[string]*Subject, len(f.Subjects)),
		units:     make(map[string]*Unit),
		skills:    make(map[string]*Skill),
		subskills: make(map[string]*Subskill),
	}
	c.subjects = make([]Subject, 0, len(f.Subjects))
	for _, subj := range f.Subjects {
		s := Subject{ID: subj.ID, Name: subj.Name}
		for _, u := range subj.Units {
			s.Units = append(s.Units, u.ID)
			unit := &Unit{ID: u.ID, Name: u.Name, SubjectID: subj.ID}
			for _, sk := range u.Skills {
				unit.Skills = append(unit.Skills, sk.ID)
				skill := &Skill{ID: sk.ID, Description: sk.Description, UnitID: u.ID, SubjectID: subj.ID}
				for _, ss := range sk.Subskills {
					skill.Subskills = append(skill.Subskills, ss.ID)
					c.subskills[ss.ID] = &Subskill{
						ID:          ss.ID,
						Description: ss.Description,
						SkillID:     sk.ID,
						UnitID:      u.ID,
						SubjectID:   subj.ID,
						Difficulty:  ss.Difficulty,
					}
				}
				c.skills[sk.ID] = skill
			}
			c.units[u.ID] = unit
		}
		c.subjects = append(c.subjects, s)
	}
	for i := range c.subjects {
		c.bySubject[c.subjects[i].ID] = &c.subjects[i]
	}
	return c, nil
}

// LoadSeed builds the embedded curriculum.
func LoadSeed() (*Catalog, *File, error) {
	f, err := Seed()
	if err != nil {
		return nil, nil, err
	}
	c, err := Build(f)
	if err != nil {
		return nil, nil, err
	}
	return c, f, nil
}

// Load builds the curriculum at path, or the embedded seed when path is empty.
func Load(path string) (*Catalog, *File, error) {
	if path == "" {
		return LoadSeed()
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	c, err := Build(f)
	if err != nil {
		return nil, nil, err
	}
	return c, f, nil
}
