package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

const counterColumns = `guild_id, user_id, daily_count, weekly_count, monthly_count, alltime_count,
       current_streak, longest_streak, last_activity_date, last_daily_reset, last_weekly_reset, last_monthly_reset`

// nextStreak replica domain.Decide: $4 = hoy, $5 = ayer.
const nextStreak = `CASE
      WHEN t.last_activity_date = ''  THEN 1
      WHEN t.last_activity_date >= $4 THEN t.current_streak
      WHEN t.last_activity_date = $5  THEN t.current_streak + 1
      ELSE 1
    END`

// incrementSQL hace rollover + incremento en un solo statement (sin read-modify-write).
// $1 guild, $2 user, $3 cantidad, $4 hoy, $5 ayer, $6 hoy es lunes, $7 hoy es día 1.
const incrementSQL = `
INSERT INTO %[1]s AS t
  (guild_id, user_id, daily_count, weekly_count, monthly_count, alltime_count,
   current_streak, longest_streak, last_activity_date, last_daily_reset, last_weekly_reset, last_monthly_reset)
VALUES ($1, $2, $3, $3, $3, $3, 1, 1, $4, $4, $4, $4)
ON CONFLICT (guild_id, user_id) DO UPDATE SET
  daily_count   = CASE WHEN t.last_daily_reset <> $4 THEN 0 ELSE t.daily_count END + $3,
  weekly_count  = CASE WHEN t.last_daily_reset <> $4 AND $6 THEN 0 ELSE t.weekly_count END + $3,
  monthly_count = CASE WHEN t.last_daily_reset <> $4 AND $7 THEN 0 ELSE t.monthly_count END + $3,
  alltime_count = t.alltime_count + $3,
  current_streak = %[2]s,
  longest_streak = CASE WHEN %[2]s > t.longest_streak THEN %[2]s ELSE t.longest_streak END,
  last_activity_date = CASE WHEN t.last_activity_date > $4 THEN t.last_activity_date ELSE $4 END,
  last_daily_reset   = $4,
  last_weekly_reset  = $4,
  last_monthly_reset = $4
RETURNING ` + counterColumns

// CounterRepo guarda los contadores de mensajes y de voz (una tabla por tipo).
type CounterRepo struct{ db *DB }

func NewCounterRepo(db *DB) *CounterRepo { return &CounterRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCounter(row rowScanner, k domain.Kind) (domain.ActivityCounter, error) {
	var (
		c                                 domain.ActivityCounter
		last, lastDaily, lastWeek, lastMo string
	)
	err := row.Scan(&c.GuildID, &c.UserID, &c.Daily, &c.Weekly, &c.Monthly, &c.AllTime,
		&c.CurrentStreak, &c.LongestStreak, &last, &lastDaily, &lastWeek, &lastMo)
	if err != nil {
		return domain.ActivityCounter{}, err
	}
	c.Kind = k
	for _, p := range []struct {
		dst *domain.Date
		src string
	}{{&c.LastActivity, last}, {&c.LastDailyReset, lastDaily}, {&c.LastWeeklyReset, lastWeek}, {&c.LastMonthlyReset, lastMo}} {
		if *p.dst, err = domain.ParseDate(p.src); err != nil {
			return domain.ActivityCounter{}, err
		}
	}
	return c, nil
}

func scanCounters(rows *sql.Rows, k domain.Kind) ([]domain.ActivityCounter, error) {
	defer rows.Close()
	var out []domain.ActivityCounter
	for rows.Next() {
		c, err := scanCounter(rows, k)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CounterRepo) Get(ctx context.Context, k domain.Kind, guildID, userID string) (domain.ActivityCounter, error) {
	table, err := counterTable(k)
	if err != nil {
		return domain.ActivityCounter{}, err
	}
	row := r.db.queryRow(ctx, `
SELECT `+counterColumns+`
  FROM `+table+`
 WHERE guild_id = $1 AND user_id = $2
`, guildID, userID)
	c, err := scanCounter(row, k)
	if err == sql.ErrNoRows {
		return domain.ActivityCounter{}, ErrNotFound
	}
	return c, errors.Wrapf(err, "get %s counter", k)
}

// Upsert escribe el registro completo tal cual (correcciones manuales / import).
func (r *CounterRepo) Upsert(ctx context.Context, c domain.ActivityCounter) error {
	table, err := counterTable(c.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `
INSERT INTO `+table+` (`+counterColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (guild_id, user_id) DO UPDATE SET
  daily_count        = EXCLUDED.daily_count,
  weekly_count       = EXCLUDED.weekly_count,
  monthly_count      = EXCLUDED.monthly_count,
  alltime_count      = EXCLUDED.alltime_count,
  current_streak     = EXCLUDED.current_streak,
  longest_streak     = EXCLUDED.longest_streak,
  last_activity_date = EXCLUDED.last_activity_date,
  last_daily_reset   = EXCLUDED.last_daily_reset,
  last_weekly_reset  = EXCLUDED.last_weekly_reset,
  last_monthly_reset = EXCLUDED.last_monthly_reset
`,
		c.GuildID, c.UserID, c.Daily, c.Weekly, c.Monthly, c.AllTime,
		c.CurrentStreak, c.LongestStreak,
		c.LastActivity.String(), c.LastDailyReset.String(), c.LastWeeklyReset.String(), c.LastMonthlyReset.String(),
	)
	return errors.Wrapf(err, "upsert %s counter", c.Kind)
}

// Increment aplica la política de rollover y suma amount de forma atómica.
func (r *CounterRepo) Increment(ctx context.Context, k domain.Kind, guildID, userID string, amount int64, today domain.Date) (domain.ActivityCounter, error) {
	if amount <= 0 {
		return domain.ActivityCounter{}, ErrInvalidAmount
	}
	table, err := counterTable(k)
	if err != nil {
		return domain.ActivityCounter{}, err
	}
	q := fmt.Sprintf(incrementSQL, table, nextStreak)
	row := r.db.queryRow(ctx, q,
		guildID, userID, amount,
		today.String(), today.AddDays(-1).String(),
		today.Weekday() == time.Monday, today.Day() == 1,
	)
	c, err := scanCounter(row, k)
	return c, errors.Wrapf(err, "increment %s counter", k)
}

// TopN: filas con valor > 0, desc por valor y desempate por user_id.
func (r *CounterRepo) TopN(ctx context.Context, k domain.Kind, guildID string, w domain.Window, n int) ([]domain.ActivityCounter, error) {
	table, err := counterTable(k)
	if err != nil {
		return nil, err
	}
	col, err := windowColumn(w)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.query(ctx, `
SELECT `+counterColumns+`
  FROM `+table+`
 WHERE guild_id = $1 AND `+col+` > 0
 ORDER BY `+col+` DESC, user_id ASC
 LIMIT $2
`, guildID, n)
	if err != nil {
		return nil, errors.Wrapf(err, "top %s %s", k, w)
	}
	return scanCounters(rows, k)
}

// TopStreaks ordena por racha actual, luego la más larga.
func (r *CounterRepo) TopStreaks(ctx context.Context, k domain.Kind, guildID string, n int) ([]domain.ActivityCounter, error) {
	table, err := counterTable(k)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.query(ctx, `
SELECT `+counterColumns+`
  FROM `+table+`
 WHERE guild_id = $1 AND current_streak > 0
 ORDER BY current_streak DESC, longest_streak DESC, user_id ASC
 LIMIT $2
`, guildID, n)
	if err != nil {
		return nil, errors.Wrapf(err, "top %s streaks", k)
	}
	return scanCounters(rows, k)
}

// Counters: mapa user_id -> contador para los ids dados (los que no existen no aparecen).
func (r *CounterRepo) Counters(ctx context.Context, k domain.Kind, guildID string, userIDs []string) (map[string]domain.ActivityCounter, error) {
	out := map[string]domain.ActivityCounter{}
	if len(userIDs) == 0 {
		return out, nil
	}
	table, err := counterTable(k)
	if err != nil {
		return nil, err
	}

	var (
		rows *sql.Rows
		base = `SELECT ` + counterColumns + ` FROM ` + table + ` WHERE guild_id = $1 AND `
	)
	if r.db.dialect == DialectPostgres {
		rows, err = r.db.query(ctx, base+`user_id = ANY($2)`, guildID, pq.Array(userIDs))
	} else {
		ph := make([]string, len(userIDs))
		args := make([]any, 0, len(userIDs)+1)
		args = append(args, guildID)
		for i, id := range userIDs {
			ph[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, id)
		}
		rows, err = r.db.query(ctx, base+`user_id IN (`+strings.Join(ph, ",")+`)`, args...)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "batch %s counters", k)
	}
	list, err := scanCounters(rows, k)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		out[c.UserID] = c
	}
	return out, nil
}
