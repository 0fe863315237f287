package usecase

import (
	"time"

	"IntelPull/internal/domain/models"
)

// Decide maps a local wall-clock instant to the tiers that should run on this
// tick. It is a pure total function: no state, no side effects, and a missed
// tick is simply skipped.
//
// Windows (hours are local market time):
//   - market hours, weekday 09:30-16:00: mini at :00 and :30, deep at :00
//   - after-market, weekday 16:00-19:00: at :00, even hour deep, odd hour mini
//   - evening, any day 19:00-06:00: at :00, deep at 21, mini at 19/22/1/4
//   - pre-market, any day 06:00-09:30: mini at :00, plus deep at the 06:00 open
func Decide(hour, minute int, weekday time.Weekday) models.ScheduleDecision {
	weekend := weekday == time.Saturday || weekday == time.Sunday

	clock := hour*60 + minute
	marketHours := !weekend && clock >= 9*60+30 && clock < 16*60
	afterMarket := !weekend && hour >= 16 && hour < 19
	evening := hour >= 19 || hour < 6
	preMarket := clock >= 6*60 && clock < 9*60+30

	var d models.ScheduleDecision
	switch {
	case marketHours:
		d.RunMini = minute == 0 || minute == 30
		d.RunDeep = minute == 0
	case afterMarket:
		if minute == 0 {
			if hour%2 == 0 {
				d.RunDeep = true
			} else {
				d.RunMini = true
			}
		}
	case evening:
		if minute == 0 {
			d.RunDeep = hour == 21
			switch hour {
			case 19, 22, 1, 4:
				d.RunMini = true
			}
		}
	case preMarket:
		// Deep fires once at the 06:00 open of the pre-market window.
		if minute == 0 {
			d.RunMini = true
			d.RunDeep = hour == 6
		}
	}
	return d
}
