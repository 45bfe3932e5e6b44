// Package refdata loads and holds the session's reference data: the rider
// roster and today's race cards. The cache is filled once per session and
// read-only afterwards; autocomplete and extraction degrade gracefully when
// either feed is missing.
package refdata

import "github.com/keirinjingle/mofu/internal/types"

// Cache is the process-wide reference snapshot. It is populated by Load (or
// by tests directly) and never mutated afterwards, so concurrent readers
// need no locking.
type Cache struct {
	Riders   []types.RiderRecord
	DayCards []types.VenueDayCard
}

// RidersByName returns every rider record whose name matches exactly.
// Resolution callers attach an ID only when exactly one record comes back.
func (c *Cache) RidersByName(name string) []types.RiderRecord {
	if c == nil {
		return nil
	}
	var out []types.RiderRecord
	for _, r := range c.Riders {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// FindSlot looks up a race slot by venue name and race number on today's
// cards. Returns false when the pair is not scheduled today.
func (c *Cache) FindSlot(venue string, raceNo int) (types.RaceSlot, bool) {
	if c == nil {
		return types.RaceSlot{}, false
	}
	for _, v := range c.DayCards {
		if v.Venue != venue {
			continue
		}
		for _, s := range v.Races {
			if s.RaceNumber == raceNo {
				return s, true
			}
		}
	}
	return types.RaceSlot{}, false
}
