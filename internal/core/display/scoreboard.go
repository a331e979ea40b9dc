package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/courtside/internal/core/clock"
	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/events"
)

const (
	dividerHeavy = "========================================================================"
	dividerLight = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"
)

// PrintScoreboard writes one scoreboard block. Period and match ends get the
// heavy divider so they stand out in a scrolling terminal.
func PrintScoreboard(w io.Writer, snap scoreboard.Snapshot, eventType events.EventType, at time.Time) {
	divider := dividerLight
	if eventType == events.EventPeriodEnd || eventType == events.EventMatchEnd {
		divider = dividerHeavy
	}

	home, away := snap.Home, snap.Away
	homeShort := shortName(home.Name)
	awayShort := shortName(away.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s %s]  %s  %s\n", label(eventType), at.Format("3:04:05.000 PM"), snap.Sport, shortID(snap.SessionID))
	fmt.Fprintf(&b, "%s\n", divider)
	fmt.Fprintf(&b, "  %s %d  -  %d %s\n", home.Name, home.Score, away.Score, away.Name)
	fmt.Fprintf(&b, "    %-22s%s\n", "Clock:", clockLine(snap.Clock))
	fmt.Fprintf(&b, "    %-22s%s %d  |  %s %d\n", "Team fouls:", homeShort, home.Fouls, awayShort, away.Fouls)
	fmt.Fprintf(&b, "    %-22s%s %d/%d  |  %s %d/%d\n", "Timeouts left:",
		homeShort, home.TimeoutsRemaining, home.TimeoutAllowance,
		awayShort, away.TimeoutsRemaining, away.TimeoutAllowance)
	printPlayers(&b, homeShort, home.Players)
	printPlayers(&b, awayShort, away.Players)
	fmt.Fprintf(&b, "%s\n", divider)

	fmt.Fprint(w, b.String())
}

func clockLine(c scoreboard.Clock) string {
	switch c.State {
	case clock.StateMatchExpired:
		return fmt.Sprintf("FINAL  (%d periods)", c.PeriodCount)
	default:
		return fmt.Sprintf("%s  %s of %d  %s", c.Display, humanize.Ordinal(c.Period), c.PeriodCount, strings.ToUpper(string(c.State)))
	}
}

func printPlayers(b *strings.Builder, team string, players []scoreboard.PlayerLine) {
	if len(players) == 0 {
		return
	}
	fmt.Fprintf(b, "    %s\n", team+":")
	for _, p := range players {
		flag := ""
		if p.FoulLimitReached {
			flag = "  [FOUL LIMIT]"
		}
		fmt.Fprintf(b, "      #%-3d %-24s%3d pts  %d fouls%s\n", p.Number, p.Name, p.Points, p.Fouls, flag)
	}
}

func label(t events.EventType) string {
	return strings.ToUpper(strings.ReplaceAll(string(t), "_", " "))
}

var teamSuffixes = map[string]bool{
	"FC": true, "SC": true, "CF": true, "AFC": true, "FK": true,
	"BK": true, "IF": true, "SK": true, "CD": true, "AD": true,
	"UD": true, "SV": true, "CA": true, "RC": true, "BC": true,
	"HC": true, "VC": true,
}

func shortName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name
	}
	last := parts[len(parts)-1]
	if len(parts) > 1 && teamSuffixes[strings.ToUpper(last)] {
		return parts[len(parts)-2]
	}
	return last
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
