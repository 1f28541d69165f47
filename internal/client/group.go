package client

import (
	"fmt"
	"strings"
	"time"

	"minichat/pkg/models"
)

// DayGroup is a run of consecutive messages sharing a calendar day.
type DayGroup struct {
	Label    string
	Messages []models.Message
}

var monthShort = [...]string{
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// DayLabel renders the header shown above a day's messages. Today and
// yesterday get friendly names, older days a short pt-BR date.
func DayLabel(ts, now time.Time) string {
	ts = ts.Local()
	now = now.Local()
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	switch day(ts) {
	case day(now):
		return "Hoje"
	case day(now.AddDate(0, 0, -1)):
		return "Ontem"
	}
	return fmt.Sprintf("%d de %s", ts.Day(), monthShort[ts.Month()-1])
}

// GroupByDay splits a timestamp-ordered message slice into day buckets.
func GroupByDay(msgs []models.Message, now time.Time) []DayGroup {
	var groups []DayGroup
	for _, m := range msgs {
		label := DayLabel(m.Timestamp, now)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DayGroup{Label: label, Messages: []models.Message{m}})
	}
	return groups
}

// Initials shortens a display name to the avatar form: a single word
// contributes its first two characters, otherwise the first and last
// words contribute one each.
func Initials(name string) string {
	parts := strings.Fields(strings.ToUpper(strings.TrimSpace(name)))
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		r := []rune(parts[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return string(r)
	}
	first := []rune(parts[0])
	last := []rune(parts[len(parts)-1])
	return string(first[0]) + string(last[0])
}

// SenderColor derives a stable ANSI-usable hex color from a name so the
// same sender always renders the same. Very light colors are replaced
// with a darker fallback to stay readable on a pale avatar background.
func SenderColor(name string) string {
	var hash int32
	for _, r := range name {
		hash = r + ((hash << 5) - hash)
	}
	var rgb [3]int32
	for i := range rgb {
		rgb[i] = (hash >> (uint(i) * 8)) & 0xff
	}
	// Perceived luminance; past the threshold the color would wash out.
	lum := (0.299*float64(rgb[0]) + 0.587*float64(rgb[1]) + 0.114*float64(rgb[2])) / 255
	if lum > 0.8 {
		h := ((hash % 360) + 360) % 360
		return hslToHex(float64(h), 0.5, 0.4)
	}
	return fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2])
}

func hslToHex(h, s, l float64) string {
	c := (1 - abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - abs(mod2(hp)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return fmt.Sprintf("#%02X%02X%02X", int((r+m)*255), int((g+m)*255), int((b+m)*255))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func mod2(f float64) float64 {
	for f >= 2 {
		f -= 2
	}
	return f
}

// MergeMessages reconciles a server snapshot with locally appended
// messages that have not shown up in a poll yet. Server order wins;
// pending extras keep their optimistic position at the tail.
func MergeMessages(server, local []models.Message) []models.Message {
	seen := make(map[string]struct{}, len(server))
	out := make([]models.Message, 0, len(server)+4)
	for _, m := range server {
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	for _, m := range local {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		out = append(out, m)
	}
	return out
}
