package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	service "github.com/okian/curbcast/internal/app"
	"github.com/okian/curbcast/internal/domain/airport"
	"github.com/okian/curbcast/internal/domain/model"
)

const clock = "15:04"

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func directionNoun(d model.Direction) string {
	if d == model.Departure {
		return "departure"
	}
	return "arrival"
}

// flightLine renders one flight as "14:05 AS 2345 from SEA | Zone A/B | curb 14:25".
func flightLine(f model.Flight) string {
	var b strings.Builder
	b.WriteString(f.Scheduled.Format(clock))
	b.WriteString(" ")
	b.WriteString(f.Number)
	if f.Route != "" {
		if f.IsArrival() {
			b.WriteString(" from ")
		} else {
			b.WriteString(" to ")
		}
		b.WriteString(f.Route)
	}
	b.WriteString(" | ")
	b.WriteString(f.Zone.Label())
	if f.ReadyAt != nil {
		b.WriteString(" | curb ")
		b.WriteString(f.ReadyAt.Format(clock))
	}
	if f.Status != model.StatusScheduled && f.Status != model.StatusUnknown {
		b.WriteString(" | ")
		b.WriteString(f.Status.String())
	}
	return b.String()
}

// footer notes the snapshot age and whether it is a degraded-mode copy.
func footer(b *strings.Builder, f service.Freshness) {
	if f.Stale {
		fmt.Fprintf(b, "\nNote: showing cached data from %s, the live schedule is unavailable right now.\n", f.AsOf.Format(clock))
		return
	}
	fmt.Fprintf(b, "\nData as of %s.\n", f.AsOf.Format(clock))
}

func renderFlights(v service.FlightsView, title string) string {
	var b strings.Builder
	noun := directionNoun(v.Direction)
	if len(v.Flights) == 0 {
		fmt.Fprintf(&b, "No upcoming %ss at %s.\n", noun, v.Airport)
	} else {
		fmt.Fprintf(&b, "%s %ss at %s:\n", title, noun, v.Airport)
		for _, f := range v.Flights {
			b.WriteString(flightLine(f))
			b.WriteString("\n")
		}
	}
	footer(&b, v.Freshness)
	return b.String()
}

func renderDelays(v service.FlightsView) string {
	var b strings.Builder
	noun := directionNoun(v.Direction)
	if len(v.Flights) == 0 {
		fmt.Fprintf(&b, "No delayed or cancelled %ss at %s.\n", noun, v.Airport)
	} else {
		fmt.Fprintf(&b, "Delayed or cancelled %ss at %s:\n", noun, v.Airport)
		for _, f := range v.Flights {
			b.WriteString(flightLine(f))
			b.WriteString("\n")
		}
	}
	footer(&b, v.Freshness)
	return b.String()
}

func renderClusters(v service.ClustersView) string {
	var b strings.Builder
	if len(v.Clusters) == 0 {
		fmt.Fprintf(&b, "No surge clusters ahead at %s.\n", v.Airport)
	} else {
		fmt.Fprintf(&b, "Surge clusters at %s:\n", v.Airport)
		for i, c := range v.Clusters {
			if i > 0 {
				b.WriteString("\n")
			}
			labels := make([]string, 0, len(c.Zones))
			for _, z := range c.Zones {
				labels = append(labels, z.Label())
			}
			fmt.Fprintf(&b, "%s-%s | %s | %s\n",
				c.Anchor.Format(clock), c.End.Format(clock),
				plural(c.Size(), "flight"), strings.Join(labels, ", "))
			for _, f := range c.Flights {
				b.WriteString("  ")
				b.WriteString(flightLine(f))
				b.WriteString("\n")
			}
		}
	}
	footer(&b, v.Freshness)
	return b.String()
}

func renderBestHours(v service.BestHoursView) string {
	var b strings.Builder
	noun := directionNoun(v.Direction)
	if len(v.Hours) == 0 {
		fmt.Fprintf(&b, "No %ss in the next %dh at %s.\n", noun, v.HorizonHours, v.Airport)
	} else {
		fmt.Fprintf(&b, "Best hours at %s (next %dh, %ss):\n", v.Airport, v.HorizonHours, noun)
		for i, h := range v.Hours {
			fmt.Fprintf(&b, "%d. %s-%s | %s\n", i+1,
				h.Start.Format(clock), h.Start.Add(time.Hour).Format(clock), plural(h.Count, noun))
		}
	}
	footer(&b, v.Freshness)
	return b.String()
}

func renderSurge(v service.SurgeView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Surge at %s: %s\n", v.Airport, v.Level)
	fmt.Fprintf(&b, "%s between %s and %s.\n", plural(v.Count, "arrival"), v.From.Format(clock), v.To.Format(clock))
	footer(&b, v.Freshness)
	return b.String()
}

func renderSummary(v service.SummaryView) string {
	var b strings.Builder
	noun := directionNoun(v.Direction)
	if v.Total == 0 {
		fmt.Fprintf(&b, "No upcoming %ss at %s.\n", noun, v.Airport)
	} else {
		fmt.Fprintf(&b, "%s %ss by hour:\n", v.Airport, noun)
		for hour, n := range v.Counts {
			if n == 0 {
				continue
			}
			fmt.Fprintf(&b, "%02d:00 - %s\n", hour, plural(n, noun))
		}
		fmt.Fprintf(&b, "\nPeak Hour: %02d:00 with %s.\n", v.PeakHour, plural(v.PeakCount, noun))
	}
	footer(&b, v.Freshness)
	return b.String()
}

// textError is the chat reply for a failed command.
func textError(err error) string {
	switch {
	case errors.Is(err, ErrUnavailable):
		return ErrUnavailable.Error()
	case errors.Is(err, airport.ErrUnknownAirport):
		return "Unknown airport."
	case errors.Is(err, ErrMethodNotAllowed):
		return "Method not allowed."
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidDirection):
		return "Unrecognized request, use direction=arrival or direction=departure."
	default:
		return "Something went wrong, try again."
	}
}
