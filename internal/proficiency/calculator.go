package proficiency

import (
	"context"
	"fmt"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/store"
)

// AttemptSource is the read side of the attempt store.
type AttemptSource interface {
	Query(ctx context.Context, q store.AttemptQuery) ([]store.Attempt, error)
}

// CatalogSource returns the curriculum in effect. The Catalogs view of a
// *skillgraph.Holder satisfies it.
type CatalogSource interface {
	Load() *curriculum.Catalog
}

// Calculator computes proficiency for one student at a time.
type Calculator struct {
	attempts AttemptSource
	catalog  CatalogSource
	strategy Strategy
}

// NewCalculator returns a calculator using strat; nil means Plain.
func NewCalculator(attempts AttemptSource, catalog CatalogSource, strat Strategy) *Calculator {
	if strat == nil {
		strat = Plain
	}
	return &Calculator{attempts: attempts, catalog: catalog, strategy: strat}
}

// Strategy reports the strategy the calculator was built with.
func (c *Calculator) Strategy() Strategy { return c.strategy }

// Proficiency returns a student's proficiency at one entity. Unknown
// skills yield 0 without error; store failures are returned.
func (c *Calculator) Proficiency(ctx context.Context, studentID, entityID string, typ curriculum.EntityType) (float64, error) {
	cat := c.catalog.Load()
	switch typ {
	case curriculum.EntitySubskill:
		as, err := c.attempts.Query(ctx, store.AttemptQuery{StudentID: studentID, SubskillID: entityID})
		if err != nil {
			return 0, fmt.Errorf("proficiency of %s: %w", entityID, err)
		}
		return c.strategy.Subskill(as), nil

	case curriculum.EntitySkill:
		subs := cat.SubskillsOf(entityID)
		if len(subs) == 0 {
			return 0, nil
		}
		as, err := c.attempts.Query(ctx, store.AttemptQuery{StudentID: studentID})
		if err != nil {
			return 0, fmt.Errorf("proficiency of %s: %w", entityID, err)
		}
		by := make(map[string][]store.Attempt)
		for _, a := range as {
			by[a.SubskillID] = append(by[a.SubskillID], a)
		}
		vals := make([]float64, len(subs))
		for i, ss := range subs {
			vals[i] = c.strategy.Subskill(by[ss.ID])
		}
		return Clamp(Mean(vals)), nil
	}
	return 0, nil
}

// Snapshot loads every attempt of a student and computes all
// proficiencies in one pass.
func (c *Calculator) Snapshot(ctx context.Context, studentID string) (*Snapshot, error) {
	as, err := c.attempts.Query(ctx, store.AttemptQuery{StudentID: studentID})
	if err != nil {
		return nil, fmt.Errorf("proficiency snapshot: %w", err)
	}
	return Build(studentID, c.catalog.Load(), as, c.strategy), nil
}
