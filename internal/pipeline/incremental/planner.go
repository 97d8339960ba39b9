package incremental

import (
	"sort"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/datepath"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/watermark"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
)

// Operation is one planned object download.
type Operation struct {
	// Object is the remote object to fetch
	Object logtypes.Object

	// Date is the compact date the object is grouped under
	Date string

	// Sequence is the object's position within its date group
	Sequence int

	// FileName is the sequence file the object is written to
	FileName string
}

// Plan selects the objects newer than the watermark and assigns each a
// sequence file. Objects whose calendar date in loc is on or before the
// watermark date are never selected. A nil watermark selects every JSON
// object. Operations are ordered by date, then creation time, then key.
func Plan(objects []logtypes.Object, wm *logtypes.Watermark, loc *time.Location) []Operation {
	candidates := make([]logtypes.Object, 0, len(objects))
	for _, obj := range objects {
		if !storage.HasJSONExtension(obj.Key) {
			continue
		}
		if wm != nil && !datepath.CalendarDate(obj.CreatedAt, loc).After(wm.Date) {
			continue
		}
		candidates = append(candidates, obj)
	}
	storage.SortByCreated(candidates)

	type group struct {
		day     time.Time
		objects []logtypes.Object
	}
	groups := make(map[string]*group)
	dates := make([]string, 0)
	for _, obj := range candidates {
		date := datepath.FormatCompactDate(obj.CreatedAt, loc)
		g, ok := groups[date]
		if !ok {
			g = &group{day: datepath.CalendarDate(obj.CreatedAt, loc)}
			groups[date] = g
			dates = append(dates, date)
		}
		g.objects = append(g.objects, obj)
	}
	sort.SliceStable(dates, func(i, j int) bool {
		return groups[dates[i]].day.Before(groups[dates[j]].day)
	})

	ops := make([]Operation, 0, len(candidates))
	for _, date := range dates {
		for seq, obj := range groups[date].objects {
			ops = append(ops, Operation{
				Object:   obj,
				Date:     date,
				Sequence: seq,
				FileName: watermark.FileName(date, seq),
			})
		}
	}
	return ops
}

// HeldBack counts the JSON objects whose calendar date in loc equals the
// watermark date. Plan excludes them.
func HeldBack(objects []logtypes.Object, wm *logtypes.Watermark, loc *time.Location) int {
	if wm == nil {
		return 0
	}
	n := 0
	for _, obj := range objects {
		if storage.HasJSONExtension(obj.Key) && datepath.CalendarDate(obj.CreatedAt, loc).Equal(wm.Date) {
			n++
		}
	}
	return n
}
