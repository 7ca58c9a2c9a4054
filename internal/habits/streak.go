package habits

import "sort"

// dailyTally counts the answers recorded on a single calendar date.
type dailyTally struct {
	Total     int
	Successes int
}

// fullSuccess reports whether every answer recorded that date was a yes.
func (t dailyTally) fullSuccess() bool {
	return t.Total > 0 && t.Successes == t.Total
}

// tallyByDate groups log entries by calendar date. Dates with no entries never
// appear in the result.
func tallyByDate(entries []LogEntry) map[string]dailyTally {
	tallies := make(map[string]dailyTally, len(entries))
	for _, entry := range entries {
		tally := tallies[entry.Date]
		tally.Total++
		if entry.Status {
			tally.Successes++
		}
		tallies[entry.Date] = tally
	}
	return tallies
}

// currentStreak walks the recorded dates from most recent backwards and counts
// consecutive full-success dates, stopping at the first date with a failure.
// The walk visits recorded dates only: calendar days with no entries at all are
// absent from the tally and do not end the streak.
func currentStreak(tallies map[string]dailyTally) int {
	dates := make([]string, 0, len(tallies))
	for date := range tallies {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	streak := 0
	for _, date := range dates {
		if !tallies[date].fullSuccess() {
			break
		}
		streak++
	}
	return streak
}
