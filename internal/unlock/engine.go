package unlock

import (
	"context"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/proficiency"
	"github.com/abhisek/kinderpath/internal/skillgraph"
)

// Engine answers unlock questions for a student. It always uses plain
// proficiency.
type Engine struct {
	world *skillgraph.Holder
	calc  *proficiency.Calculator
}

// NewEngine answers from the catalog and graph published in world and the
// student's attempts.
func NewEngine(world *skillgraph.Holder, attempts proficiency.AttemptSource) *Engine {
	return &Engine{
		world: world,
		calc:  proficiency.NewCalculator(attempts, world.Catalogs(), proficiency.Plain),
	}
}

// Check evaluates one entity. Unknown entities are evaluated like any
// other: no edges means unlocked.
func (e *Engine) Check(ctx context.Context, studentID, entityID string, typ curriculum.EntityType) (Result, error) {
	snap, err := e.calc.Snapshot(ctx, studentID)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(e.world.Load(), snap, skillgraph.Ref{ID: entityID, Type: typ}, EdgeThreshold), nil
}

// UnlockedSet returns the ids of unlocked entities.
func (e *Engine) UnlockedSet(ctx context.Context, studentID string, typ curriculum.EntityType, subject string) ([]skillgraph.Ref, error) {
	snap, err := e.calc.Snapshot(ctx, studentID)
	if err != nil {
		return nil, err
	}
	cur := e.world.Current()
	return Unlocked(cur.Graph, cur.Catalog, snap, typ, subject), nil
}
