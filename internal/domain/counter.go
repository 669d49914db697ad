package domain

import "time"

// ActivityCounter es el registro por (guild, user) de un tipo de actividad.
// Para voz los contadores son minutos.
type ActivityCounter struct {
	GuildID string
	UserID  string
	Kind    Kind

	Daily   int64
	Weekly  int64
	Monthly int64
	AllTime int64

	CurrentStreak int
	LongestStreak int

	LastActivity     Date
	LastDailyReset   Date
	LastWeeklyReset  Date
	LastMonthlyReset Date
}

func (c ActivityCounter) Value(w Window) int64 {
	switch w {
	case WindowDaily:
		return c.Daily
	case WindowWeekly:
		return c.Weekly
	case WindowMonthly:
		return c.Monthly
	case WindowAllTime:
		return c.AllTime
	}
	return 0
}

// StreakChange describe qué le pasa a la racha con una actividad nueva.
type StreakChange int

const (
	StreakKeep    StreakChange = iota // mismo día
	StreakExtend                      // día siguiente
	StreakRestart                     // primera actividad o hueco de 2+ días
)

// Rollover es la decisión de la política para un evento en "today".
type Rollover struct {
	Streak       StreakChange
	ResetDaily   bool
	ResetWeekly  bool
	ResetMonthly bool
}

// Decide aplica la política de rollover sin tocar el registro.
//
// Las semanas y los meses se reinician sólo en el límite de calendario
// (lunes / día 1) y sólo si todavía no hubo reset diario hoy; no son ventanas móviles.
func Decide(c ActivityCounter, today Date) Rollover {
	var r Rollover

	switch {
	case c.LastActivity.IsZero():
		r.Streak = StreakRestart
	default:
		diff := today.DaysSince(c.LastActivity)
		switch {
		case diff <= 0:
			r.Streak = StreakKeep
		case diff == 1:
			r.Streak = StreakExtend
		default:
			r.Streak = StreakRestart
		}
	}

	newDay := !c.LastDailyReset.Equal(today)
	r.ResetDaily = newDay
	r.ResetWeekly = newDay && today.Weekday() == time.Monday
	r.ResetMonthly = newDay && today.Day() == 1
	return r
}

// Advance devuelve el registro después de un evento de magnitud amount en today.
func Advance(c ActivityCounter, today Date, amount int64) ActivityCounter {
	r := Decide(c, today)

	switch r.Streak {
	case StreakExtend:
		c.CurrentStreak++
	case StreakRestart:
		c.CurrentStreak = 1
	}
	if c.CurrentStreak > c.LongestStreak {
		c.LongestStreak = c.CurrentStreak
	}

	if r.ResetDaily {
		c.Daily = 0
	}
	if r.ResetWeekly {
		c.Weekly = 0
	}
	if r.ResetMonthly {
		c.Monthly = 0
	}
	c.Daily += amount
	c.Weekly += amount
	c.Monthly += amount
	c.AllTime += amount

	if !c.LastActivity.After(today) {
		c.LastActivity = today
	}
	c.LastDailyReset = today
	c.LastWeeklyReset = today
	c.LastMonthlyReset = today
	return c
}
