package domain

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownMetric = errors.New("unknown metric")

// Kind es el tipo de actividad que se cuenta.
type Kind string

const (
	KindMessage Kind = "message"
	KindVoice   Kind = "voice"
)

func (k Kind) Valid() bool { return k == KindMessage || k == KindVoice }

// Window es uno de los cuatro buckets de cada contador.
type Window string

const (
	WindowDaily   Window = "daily"
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
	WindowAllTime Window = "alltime"
)

var Windows = []Window{WindowDaily, WindowWeekly, WindowMonthly, WindowAllTime}

func (w Window) Valid() bool {
	for _, v := range Windows {
		if v == w {
			return true
		}
	}
	return false
}

// Metric = bucket x tipo de actividad, p.ej. weekly_messages o alltime_voice.
type Metric struct {
	Kind   Kind
	Window Window
}

// MetricBalanced es el modo compuesto (mensajes + voz + peso de miembro).
const MetricBalanced = "balanced"

func (m Metric) String() string {
	suffix := "messages"
	if m.Kind == KindVoice {
		suffix = "voice"
	}
	return string(m.Window) + "_" + suffix
}

// ParseMetric acepta "weekly_messages", "daily_voice", "alltime_message", etc.
func ParseMetric(s string) (Metric, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '_')
	if i <= 0 {
		return Metric{}, errors.Wrap(ErrUnknownMetric, s)
	}
	w := Window(s[:i])
	if w == "all" || w == "all-time" {
		w = WindowAllTime
	}
	var k Kind
	switch s[i+1:] {
	case "messages", "message", "msgs", "chat":
		k = KindMessage
	case "voice", "vc":
		k = KindVoice
	default:
		return Metric{}, errors.Wrap(ErrUnknownMetric, s)
	}
	if !w.Valid() {
		return Metric{}, errors.Wrap(ErrUnknownMetric, s)
	}
	return Metric{Kind: k, Window: w}, nil
}
