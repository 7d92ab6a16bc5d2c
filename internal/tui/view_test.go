package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/wayfare/internal/tui/theme"
)

func trueColor(t *testing.T) {
	t.Helper()
	prevProfile := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(prevProfile)
	})
}

func TestView_ShowsDayAndWishlist(t *testing.T) {
	b := newBoard(t,
		scheduled(t, "Louvre", "10:00", "12:00"),
		wishlisted(t, "Crêpes", 45),
	)
	b.send(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := ansi.Strip(b.m.View())
	for _, want := range []string{"wayfare", "Paris", "Sat Jun 14", "day 1/3", "Louvre 10:00-12:00", "Wishlist (1)", "Crêpes", "45m", "10:00 AM"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "Louvre"); got != 1 {
		t.Errorf("activity name shown %d times, want once on its first row", got)
	}
	if lines := strings.Count(out, "\n") + 1; lines != 30 {
		t.Errorf("view has %d lines, want 30", lines)
	}
}

func TestView_NarrowHidesWishlist(t *testing.T) {
	b := newBoard(t, wishlisted(t, "Crêpes", 45))
	b.send(tea.WindowSizeMsg{Width: 60, Height: 20})

	if out := ansi.Strip(b.m.View()); strings.Contains(out, "Wishlist") {
		t.Errorf("narrow view should hide the wishlist:\n%s", out)
	}
}

func TestView_PreviewStatus(t *testing.T) {
	b := newBoard(t,
		scheduled(t, "Cafe", "09:00", "10:00"),
		scheduled(t, "Lunch", "12:00", "13:00"),
	)

	b.press("enter")
	out := ansi.Strip(b.m.View())
	if !strings.Contains(out, "Moving Cafe to 09:00-10:00: free") {
		t.Errorf("expected free preview:\n%s", out)
	}

	for range 7 {
		b.press("j")
	}
	out = ansi.Strip(b.m.View())
	if !strings.Contains(out, "blocked, overlaps Lunch (12:00-13:00)") {
		t.Errorf("expected blocked preview:\n%s", out)
	}
	if !strings.Contains(out, "▶ Cafe 12:30-13:30") {
		t.Errorf("expected preview block on the grid:\n%s", out)
	}
	if !strings.Contains(out, "enter drop") {
		t.Errorf("expected hold help:\n%s", out)
	}
}

func TestView_ConfirmModal(t *testing.T) {
	b := newBoard(t, scheduled(t, "Louvre", "10:00", "12:00"))
	b.press("x")

	out := ansi.Strip(b.m.View())
	if !strings.Contains(out, "Remove Louvre?") || !strings.Contains(out, "y to remove") {
		t.Errorf("expected confirm modal:\n%s", out)
	}
}

func TestRenderCell_FitsWidth(t *testing.T) {
	trueColor(t)
	styles := NewStyles(nil)

	tests := []struct {
		name string
		text string
	}{
		{name: "short", text: "Louvre"},
		{name: "long", text: "Musée de l'Orangerie 10:00-12:00"},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderCell(styles.ActivityStyle, tt.text, 12)
			if got := ansi.StringWidth(out); got != 12 {
				t.Fatalf("width = %d, want 12: %q", got, out)
			}
		})
	}

	if out := ansi.Strip(renderCell(styles.ActivityStyle, "Musée de l'Orangerie", 12)); !strings.Contains(out, ellipsis) {
		t.Errorf("long text should end in an ellipsis: %q", out)
	}
}

func TestStyles_FollowTheme(t *testing.T) {
	th, err := theme.Load("latte")
	if err != nil {
		t.Fatal(err)
	}
	styles := NewStyles(th)
	p := theme.NewPalette(th)

	assertBg := func(t *testing.T, name string, style lipgloss.Style, want lipgloss.Color) {
		t.Helper()
		bg, ok := style.GetBackground().(lipgloss.Color)
		if !ok {
			t.Fatalf("%s background type = %T, want lipgloss.Color", name, style.GetBackground())
		}
		if bg != want {
			t.Fatalf("%s background = %q, want %q", name, bg, want)
		}
	}

	assertBg(t, "ActivityStyle", styles.ActivityStyle, p.ActivityBg)
	assertBg(t, "ActivityAltStyle", styles.ActivityAltStyle, p.ActivityBgAlt)
	assertBg(t, "CalendarStyle", styles.CalendarStyle, p.CalendarBg)
	assertBg(t, "PreviewBlockedStyle", styles.PreviewBlockedStyle, p.ConflictBg)
	assertBg(t, "PreviewWarnStyle", styles.PreviewWarnStyle, p.Warning)
	assertBg(t, "CursorCellStyle", styles.CursorCellStyle, p.BgSelection)

	if fg, _ := styles.PendingStyle.GetForeground().(lipgloss.Color); fg != p.Pending {
		t.Errorf("PendingStyle foreground = %q, want %q", fg, p.Pending)
	}
}

func TestLengthLabel(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, ""},
		{45, "45m"},
		{120, "2h"},
		{90, "1h30m"},
	}
	for _, tt := range tests {
		if got := lengthLabel(tt.minutes); got != tt.want {
			t.Errorf("lengthLabel(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
