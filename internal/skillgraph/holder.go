package skillgraph

import (
	"sync/atomic"

	"github.com/abhisek/kinderpath/internal/curriculum"
)

// Bound is a catalog together with the graph built against it. Neither is
// mutated once published.
type Bound struct {
	Catalog *curriculum.Catalog
	Graph   *Graph
}

// Holder publishes the catalog and graph in effect as one value, so a
// reader never pairs a new catalog with an old graph.
type Holder struct {
	cur atomic.Pointer[Bound]
}

func NewHolder(cat *curriculum.Catalog, gr *Graph) *Holder {
	h := &Holder{}
	h.cur.Store(&Bound{Catalog: cat, Graph: gr})
	return h
}

// Current returns the published pair.
func (h *Holder) Current() *Bound {
	return h.cur.Load()
}

func (h *Holder) Load() *Graph {
	return h.cur.Load().Graph
}

// Catalogs is the catalog half of the holder, for readers that only need
// the curriculum.
func (h *Holder) Catalogs() CatalogView {
	return CatalogView{h: h}
}

// CatalogView reads the catalog of a Holder.
type CatalogView struct {
	h *Holder
}

func (v CatalogView) Load() *curriculum.Catalog {
	return v.h.cur.Load().Catalog
}

// Check reports whether Swap would accept cat right now.
func (h *Holder) Check(cat *curriculum.Catalog) error {
	return curriculum.CheckUpgrade(h.cur.Load().Catalog, cat)
}

// Swap installs cat and gr together unless cat is older than the
// published catalog, and returns the previous pair.
func (h *Holder) Swap(cat *curriculum.Catalog, gr *Graph) (*Bound, error) {
	next := &Bound{Catalog: cat, Graph: gr}
	for {
		cur := h.cur.Load()
		if err := curriculum.CheckUpgrade(cur.Catalog, cat); err != nil {
			return cur, err
		}
		if h.cur.CompareAndSwap(cur, next) {
			return cur, nil
		}
	}
}
