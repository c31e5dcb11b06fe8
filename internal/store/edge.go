package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/skillgraph"
)

type edgeRepo struct {
	s *Store
}

func (r *edgeRepo) Replace(ctx context.Context, edges []skillgraph.Edge) error {
	del, delArgs := builder().Delete(tableEdges).Query()

	return r.s.do(ctx, "edges.replace", func(ctx context.Context) error {
		tx, err := r.s.drv.Tx(ctx)
		if err != nil {
			return err
		}
		if err := tx.Exec(ctx, del, delArgs, nil); err != nil {
			tx.Rollback()
			return err
		}
		for _, e := range edges {
			q, args := builder().Insert(tableEdges).
				Columns("prerequisite_id", "prerequisite_type", "unlocks_id", "unlocks_type", "threshold", "is_draft").
				Values(e.Prerequisite.ID, string(e.Prerequisite.Type), e.Unlocks.ID, string(e.Unlocks.Type), e.Threshold, e.Draft).
				Query()
			if err := tx.Exec(ctx, q, args, nil); err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

func (r *edgeRepo) List(ctx context.Context) ([]skillgraph.Edge, error) {
	q, args := builder().
		Select("prerequisite_id", "prerequisite_type", "unlocks_id", "unlocks_type", "threshold", "is_draft").
		From(entsql.Table(tableEdges)).
		OrderBy("unlocks_id", "prerequisite_id").
		Query()

	var out []skillgraph.Edge
	err := r.s.query(ctx, "edges.list", q, args, func(rows *entsql.Rows) error {
		out = out[:0]
		for rows.Next() {
			var e skillgraph.Edge
			var pt, ut string
			if err := rows.Scan(&e.Prerequisite.ID, &pt, &e.Unlocks.ID, &ut, &e.Threshold, &e.Draft); err != nil {
				return fmt.Errorf("scan edge: %w", err)
			}
			e.Prerequisite.Type = curriculum.EntityType(pt)
			e.Unlocks.Type = curriculum.EntityType(ut)
			if e.Threshold < 0 || e.Threshold > 1 {
				r.s.log.Warn("clamped out-of-range stored value", "field", "edge_threshold",
					"id", e.Prerequisite.String()+">"+e.Unlocks.String(), "value", e.Threshold)
				r.s.metrics.Clamped("edge_threshold")
				e.Threshold = min(max(e.Threshold, 0), 1)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
