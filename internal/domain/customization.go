package domain

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidColor = errors.New("invalid color")

// Customization son los ajustes cosméticos por guild. nil = usar el default.
type Customization struct {
	ChatColor   *int
	VoiceColor  *int
	FirstEmoji  *string
	SecondEmoji *string
	ThirdEmoji  *string
	ChatTitle   *string
	VoiceTitle  *string
}

// Theme es la customización ya resuelta contra los defaults.
type Theme struct {
	ChatColor  int
	VoiceColor int
	RankEmojis [3]string
	ChatTitle  string
	VoiceTitle string
}

func DefaultTheme() Theme {
	return Theme{
		ChatColor:  0x5865F2,
		VoiceColor: 0x57F287,
		RankEmojis: [3]string{"🥇", "🥈", "🥉"},
		ChatTitle:  "💬 Chat Leaderboard",
		VoiceTitle: "🎙️ Voice Leaderboard",
	}
}

// Resolve mezcla c con los defaults. Strings vacíos cuentan como no configurados.
func (c Customization) Resolve() Theme {
	t := DefaultTheme()
	if c.ChatColor != nil {
		t.ChatColor = *c.ChatColor
	}
	if c.VoiceColor != nil {
		t.VoiceColor = *c.VoiceColor
	}
	setStr := func(dst *string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			*dst = *v
		}
	}
	setStr(&t.RankEmojis[0], c.FirstEmoji)
	setStr(&t.RankEmojis[1], c.SecondEmoji)
	setStr(&t.RankEmojis[2], c.ThirdEmoji)
	setStr(&t.ChatTitle, c.ChatTitle)
	setStr(&t.VoiceTitle, c.VoiceTitle)
	return t
}

// Merge aplica los campos no-nil de patch sobre c.
func (c Customization) Merge(patch Customization) Customization {
	if patch.ChatColor != nil {
		c.ChatColor = patch.ChatColor
	}
	if patch.VoiceColor != nil {
		c.VoiceColor = patch.VoiceColor
	}
	if patch.FirstEmoji != nil {
		c.FirstEmoji = patch.FirstEmoji
	}
	if patch.SecondEmoji != nil {
		c.SecondEmoji = patch.SecondEmoji
	}
	if patch.ThirdEmoji != nil {
		c.ThirdEmoji = patch.ThirdEmoji
	}
	if patch.ChatTitle != nil {
		c.ChatTitle = patch.ChatTitle
	}
	if patch.VoiceTitle != nil {
		c.VoiceTitle = patch.VoiceTitle
	}
	return c
}

// ParseColor acepta "#RRGGBB", "RRGGBB" o "0xRRGGBB".
func ParseColor(s string) (int, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "#")
	v = strings.TrimPrefix(strings.ToLower(v), "0x")
	if len(v) != 6 {
		return 0, errors.Wrap(ErrInvalidColor, s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidColor, s)
	}
	return int(n), nil
}
