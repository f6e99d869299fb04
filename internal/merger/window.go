package merger

import "time"

// FilterByDate keeps records whose commence time falls on the same calendar
// day as target, using day boundaries in loc rather than UTC. The venue's
// own time zone is not considered.
func FilterByDate(set *Set, target time.Time, loc *time.Location) []*Record {
	if loc == nil {
		loc = time.Local
	}

	out := make([]*Record, 0, set.Len())
	for _, rec := range set.records {
		if SameLocalDay(rec.CommenceTime, target, loc) {
			out = append(out, rec)
		}
	}
	return out
}

// SameLocalDay reports whether a and b share year, month and day in loc
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
