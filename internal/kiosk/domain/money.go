package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatPKR renders a rupee amount as "Rs. 11,550".
func FormatPKR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return "Rs. " + sign + formatThousand(amount)
}

func formatThousand(n int64) string {
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}

// FormatDuration renders whole minutes as "7h 30m", or "45m" under an hour.
func FormatDuration(d time.Duration) string {
	minutes := int64(d / time.Minute)
	hours, mins := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// QuickCashNotes are the denominations offered by the kiosk's quick-cash
// buttons, largest first.
var QuickCashNotes = []int64{5000, 1000, 500, 100}

// NotesFor picks quick-cash notes, largest first, until due is covered. The
// last note may overpay; the difference is returned as change.
func NotesFor(due int64) []int64 {
	var notes []int64
	for due > 0 {
		note := QuickCashNotes[len(QuickCashNotes)-1]
		for _, n := range QuickCashNotes {
			if n <= due {
				note = n
				break
			}
		}
		notes = append(notes, note)
		due -= note
	}
	return notes
}
