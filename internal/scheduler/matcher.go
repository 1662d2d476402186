package scheduler

import (
	"github.com/google/uuid"

	"github.com/Leganyst/table-reservations/internal/model"
)

// Candidate is a table set that can seat a party: one table, or a pair of
// joinable tables.
type Candidate struct {
	Tables []model.Table
}

// Primary is the canonical table a reservation for this candidate references.
func (c Candidate) Primary() model.Table { return c.Tables[0] }

func (c Candidate) IsJoin() bool { return len(c.Tables) == 2 }

func (c Candidate) TableIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Tables))
	for i, t := range c.Tables {
		ids[i] = t.ID
	}
	return ids
}

// MatchTables returns every table set able to seat partySize, best first.
// tables must be in configured order; the ranking is stable for a fixed order:
//
//  1. single tables whose [CapacityMin, CapacityMax] contains partySize;
//  2. single tables that are oversized (CapacityMin above partySize, CapacityMax enough);
//  3. only when no single table can seat the party: unordered pairs of distinct
//     joinable tables whose summed range contains partySize, in listing order (i < j).
//
// A party that some single table can seat never gets a join, even while that
// table is booked. Joins of more than two tables are not considered. An empty
// result means no table configuration can seat the party at all.
func MatchTables(partySize int, tables []model.Table) []Candidate {
	if partySize <= 0 {
		return nil
	}

	var tight, oversized []Candidate
	joinable := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		switch {
		case t.Fits(partySize):
			tight = append(tight, Candidate{Tables: []model.Table{t}})
		case t.CapacityMax >= partySize:
			oversized = append(oversized, Candidate{Tables: []model.Table{t}})
		}
		if t.IsJoinable {
			joinable = append(joinable, t)
		}
	}

	if len(tight)+len(oversized) > 0 {
		out := make([]Candidate, 0, len(tight)+len(oversized))
		out = append(out, tight...)
		return append(out, oversized...)
	}

	var out []Candidate
	for i := 0; i < len(joinable); i++ {
		for j := i + 1; j < len(joinable); j++ {
			t1, t2 := joinable[i], joinable[j]
			if t1.ID == t2.ID {
				continue
			}
			if t1.CapacityMin+t2.CapacityMin <= partySize && partySize <= t1.CapacityMax+t2.CapacityMax {
				out = append(out, Candidate{Tables: []model.Table{t1, t2}})
			}
		}
	}
	return out
}
