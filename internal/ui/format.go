package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// shortIDLen is how many ID characters are shown and the minimum accepted
// as a prefix.
const shortIDLen = 8

// DayStats holds statistics for a single day.
type DayStats struct {
	Activities  int
	BusyMinutes int
	FreeMinutes int // inside the grid bounds
	Imported    int
}

// ComputeDayStats summarizes the scheduled activities of one day.
func ComputeDayStats(activities []*itinerary.Activity, grid timegrid.Config) DayStats {
	lo, hi := grid.Bounds()
	var s DayStats
	for _, a := range activities {
		s.Activities++
		s.BusyMinutes += a.Duration()
		if a.Source == itinerary.SourceCalendar {
			s.Imported++
		}
	}
	s.FreeMinutes = max(hi-lo-s.BusyMinutes, 0)
	return s
}

// PrintOpts configures activity printing behavior.
type PrintOpts struct {
	Verbose      bool // Show full names and details
	ShowDuration bool // Show duration column
	ShowID       bool // Show the short ID column
	MaxNameWidth int  // Maximum name width (0 = auto)
}

// CalcMaxNameWidth calculates the maximum name width based on options.
func (o PrintOpts) CalcMaxNameWidth(defaultWidth int) int {
	if o.MaxNameWidth > 0 {
		return o.MaxNameWidth
	}
	if !o.Verbose {
		return defaultWidth
	}
	// "  HH:MM-HH:MM  " = 15 chars, ID column "[abcd1234]  " = 12
	overhead := 15
	if o.ShowID {
		overhead += 12
	}
	if o.ShowDuration {
		overhead += 8
	}
	available := termWidth() - overhead
	if available > defaultWidth {
		return available
	}
	return defaultWidth
}

// PrintActivityRow prints a single scheduled activity row.
func PrintActivityRow(w io.Writer, a *itinerary.Activity, opts PrintOpts, maxNameWidth int) {
	var b strings.Builder
	b.WriteString("  ")
	if opts.ShowID {
		b.WriteString(formatMuted("[" + shortID(a.ID) + "]"))
		b.WriteString("  ")
	}
	b.WriteString(a.Start + "-" + a.End + "  ")

	name := truncate(a.Name, maxNameWidth)
	padded := fmt.Sprintf("%-*s", maxNameWidth, name)
	if a.Source == itinerary.SourceCalendar {
		b.WriteString(formatCalendar(padded))
	} else {
		b.WriteString(formatActivity(padded))
	}

	if opts.ShowDuration {
		b.WriteString("  ")
		b.WriteString(formatMuted(FormatDuration(a.Duration())))
	}
	fmt.Fprintln(w, b.String())

	if opts.Verbose {
		if a.Address != "" {
			fmt.Fprintf(w, "      %s\n", formatMuted(a.Address))
		}
		if a.Notes != "" {
			fmt.Fprintf(w, "      %s\n", formatMuted(a.Notes))
		}
	}
}

// PrintWishlistRow prints a single unscheduled activity row.
func PrintWishlistRow(w io.Writer, a *itinerary.Activity) {
	line := fmt.Sprintf("  %s  %s", formatMuted("["+shortID(a.ID)+"]"), formatActivity(a.Name))
	if len(a.Types) > 0 {
		line += " " + formatMuted("("+strings.Join(a.Types, ", ")+")")
	}
	if a.Rating != nil {
		line += " " + formatMuted(fmt.Sprintf("★%.1f", *a.Rating))
	}
	if a.DurationMinutes > 0 {
		line += " " + formatMuted(FormatDuration(a.DurationMinutes))
	}
	fmt.Fprintln(w, line)
}

// PrintConflicts prints one line per conflict, colored by severity.
func PrintConflicts(w io.Writer, conflicts []conflict.Conflict, names map[string]string) {
	for _, c := range conflicts {
		if name, ok := names[c.WithID]; ok {
			c.WithID = name
		}
		label := fmt.Sprintf("[%s]", c.Severity)
		fmt.Fprintf(w, "  %s %s\n", formatSeverity(c.Severity, label), c.String())
	}
}

// PrintDayStats prints the summary line for a day.
func PrintDayStats(w io.Writer, s DayStats) {
	line := fmt.Sprintf("%d activities | Busy: %s | Free: %s",
		s.Activities, FormatDuration(s.BusyMinutes), FormatDuration(s.FreeMinutes))
	if s.Imported > 0 {
		line += fmt.Sprintf(" | %d from calendar", s.Imported)
	}
	fmt.Fprintln(w, formatMuted(line))
}

// FormatItinerary renders scheduled activities as plain text grouped by
// date, suitable for pasting into a message.
func FormatItinerary(title string, activities []*itinerary.Activity) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	var current string
	for _, a := range activities {
		if !a.IsScheduled() {
			continue
		}
		date := a.Date.Format("Mon Jan 2")
		if date != current {
			if current != "" || title != "" {
				b.WriteString("\n")
			}
			b.WriteString(date + "\n")
			current = date
		}
		fmt.Fprintf(&b, "  %s-%s %s", a.Start, a.End, a.Name)
		if a.Address != "" {
			fmt.Fprintf(&b, " (%s)", a.Address)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// activityNames maps IDs to names for conflict messages.
func activityNames(activities []*itinerary.Activity) map[string]string {
	names := make(map[string]string, len(activities))
	for _, a := range activities {
		names[a.ID] = a.Name
	}
	return names
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// findActivity resolves a full ID or a unique ID prefix.
func findActivity(ctx context.Context, repo itinerary.Repository, ref string) (*itinerary.Activity, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty id", itinerary.ErrActivityNotFound)
	}

	a, err := repo.GetActivity(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("getting activity: %w", err)
	}
	if a != nil {
		return a, nil
	}

	if len(ref) < 4 {
		return nil, fmt.Errorf("%w: %s", itinerary.ErrActivityNotFound, ref)
	}
	all, err := repo.ListAllActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	var matches []*itinerary.Activity
	for _, c := range all {
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", itinerary.ErrActivityNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// dayHeader renders "=== 2025-06-14 Sat ===".
func dayHeader(a *itinerary.Activity) string {
	return fmt.Sprintf("=== %s %s ===", a.Date.Format(dateutil.Layout), a.Date.Format("Mon"))
}
