package formatter

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/setlist/internal/models"
)

const timeLayout = "2006-01-02 15:04"

var styles = NewPalette("#7D56F4", "#04B575", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
}

func NewPalette(t, h, m string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		header: NewBold(h).Padding(0, 1),
		muted:  NewStyle(m),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

// Title renders s as a section heading.
func Title(s string) string { return styles.title.Render(s) }

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

// UsersTable renders accounts as a table. Password hashes are never included.
func UsersTable(users []*models.User) string {
	t := newTable("#", "ID", "Email", "Created")
	for _, u := range users {
		t.Row(strconv.Itoa(u.Sequence()), u.ID(), u.Email(), u.CreatedAt().Format(timeLayout))
	}
	return t.Render()
}

// PlaylistsTable renders playlists with their song counts, keyed by playlist id.
func PlaylistsTable(playlists []*models.Playlist, songCounts map[string]int) string {
	t := newTable("ID", "Name", "Songs", "Updated")
	for _, p := range playlists {
		t.Row(p.ID(), p.Name(), strconv.Itoa(songCounts[p.ID()]), p.UpdatedAt().Format(timeLayout))
	}
	return t.Render()
}

// SongsTable renders songs in playlist order.
func SongsTable(songs []*models.Song) string {
	t := newTable("#", "Title", "Artist", "Album", "Duration")
	for i, s := range songs {
		t.Row(strconv.Itoa(i+1), s.Title(), s.Artist(), s.Album(), FormatDuration(s.Duration()))
	}
	return t.Render()
}
