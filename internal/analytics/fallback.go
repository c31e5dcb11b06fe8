package analytics

import (
	"sort"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/recommend"
)

var fallbackRank = map[Priority]int{
	PriorityHigh:       recommend.OrderHigh,
	PriorityMedium:     recommend.OrderMedium,
	PriorityNotStarted: recommend.OrderLow,
}

// FallbackRecommendations lists the non-mastered subskills of a report by
// display priority, then id. It serves subjects the ranker cannot cover.
func FallbackRecommendations(rep *Report, limit int) []recommend.Recommendation {
	if limit <= 0 {
		return []recommend.Recommendation{}
	}

	type item struct {
		subject string
		skill   string
		sub     SubskillMetrics
	}
	var items []item
	for _, subj := range rep.HierarchicalData {
		for _, u := range subj.Units {
			for _, sk := range u.Skills {
				for _, ss := range sk.Subskills {
					if ss.Priority == PriorityMastered {
						continue
					}
					items = append(items, item{subject: subj.ID, skill: sk.ID, sub: ss})
				}
			}
		}
	}
	sort.Slice(items, func(i, j int) bool {
		ri, rj := fallbackRank[items[i].sub.Priority], fallbackRank[items[j].sub.Priority]
		if ri != rj {
			return ri < rj
		}
		return items[i].sub.ID < items[j].sub.ID
	})

	out := make([]recommend.Recommendation, 0, min(limit, len(items)))
	for _, it := range items[:min(limit, len(items))] {
		var reason recommend.Reason
		switch it.sub.Priority {
		case PriorityHigh:
			reason = recommend.ReasonNearlyMastered
		case PriorityMedium:
			reason = recommend.ReasonPerformanceGap
		default:
			reason = recommend.ReasonCoverageGap
		}
		out = append(out, recommend.Recommendation{
			EntityID:           it.sub.ID,
			EntityType:         curriculum.EntitySubskill,
			Subject:            it.subject,
			SkillID:            it.skill,
			PriorityOrder:      fallbackRank[it.sub.Priority],
			Reason:             reason,
			CurrentProficiency: it.sub.Proficiency,
			Message:            recommend.Message(reason, it.sub.Description, it.sub.Proficiency),
			ReadinessStatus:    it.sub.ReadinessStatus,
			IsReady:            it.sub.ReadinessStatus.IsReady(),
		})
	}
	return out
}
