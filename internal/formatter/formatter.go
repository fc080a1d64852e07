// package formatter renders accounts and playlists for the CLI (tables, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/setlist/internal/models"
)

// PlaylistExport is a playlist together with its songs in playlist order.
type PlaylistExport struct {
	Playlist *models.Playlist
	Songs    []*models.Song
}

// FormatDuration renders seconds as m:ss, or "-" when unknown.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: ID, Title, Artist, Album, Duration
func ExportToCSV(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			song.ID(),
			song.Title(),
			song.Artist(),
			song.Album(),
			strconv.Itoa(song.Duration()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format
func ExportToMarkdown(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist.Name())

	if export.Playlist.Description() != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Playlist.Description())
	}

	fmt.Fprintf(&buf, "**Songs**: %d\n", len(export.Songs))
	fmt.Fprintf(&buf, "**Created**: %s\n\n", export.Playlist.CreatedAt().Format("2006-01-02"))

	buf.WriteString("## Songs\n\n")
	for i, song := range export.Songs {
		albumPart := ""
		if song.Album() != "" {
			albumPart = fmt.Sprintf(" (%s)", song.Album())
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, song.Artist(), song.Title(), albumPart, FormatDuration(song.Duration()))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name())
	if export.Playlist.Description() != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Playlist.Description())
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Songs))

	for i, song := range export.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.Artist(), song.Title())
	}

	return buf.Bytes(), nil
}

// Format names an export format accepted by [WriteExport].
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatMarkdown, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, md or txt)", s)
	}
}

// WriteExport writes export in format to path and returns the path written.
//
// An empty path defaults to {playlist.ID}.{format}; a directory path gets that filename appended.
func WriteExport(export *PlaylistExport, format Format, path string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatCSV:
		data, err = ExportToCSV(export)
	case FormatMarkdown:
		data, err = ExportToMarkdown(export)
	case FormatText:
		data, err = ExportToText(export)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	filename := export.Playlist.ID() + "." + string(format)
	if path == "" {
		path = filename
	} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, filename)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}
