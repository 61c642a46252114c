// package formatter exports a stored playlist and its songs to CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const watchURL = "https://www.youtube.com/watch?v="

// Format selects an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts csv, markdown (md) or text (txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: export format %q", shared.ErrInvalidArgument, s)
	}
}

// PlaylistExport is a playlist with its songs in playlist order.
type PlaylistExport struct {
	Playlist models.Playlist
	Songs    []models.Song
}

// Duration sums song durations in seconds.
func (e *PlaylistExport) Duration() int {
	total := 0
	for _, s := range e.Songs {
		total += s.Duration
	}
	return total
}

// CoverURL returns the first song cover, used as the playlist cover.
func (e *PlaylistExport) CoverURL() string {
	for _, s := range e.Songs {
		if s.CoverURL != "" {
			return s.CoverURL
		}
	}
	return ""
}

// ExportToCSV converts a PlaylistExport to CSV with columns: ID, Title, Artist, Album ID, Duration, Video ID
func ExportToCSV(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album ID", "Duration", "Video ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			song.ID,
			song.Title,
			song.Artist,
			song.AlbumID,
			strconv.Itoa(song.Duration),
			song.VideoID,
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

// ExportToMarkdown converts a PlaylistExport to Markdown. Resolved songs link to their video.
func ExportToMarkdown(export *PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Playlist.Description)
	}
	if export.Playlist.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n\n", export.Playlist.Owner)
	}

	fmt.Fprintf(&buf, "**Songs**: %d\n", len(export.Songs))
	fmt.Fprintf(&buf, "**Length**: %s\n\n", shared.FormatDuration(export.Duration()))

	buf.WriteString("## Songs\n\n")
	for i, song := range export.Songs {
		title := song.Title
		if song.Playable() {
			title = fmt.Sprintf("[%s](%s%s)", song.Title, watchURL, song.VideoID)
		}
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, song.Artist, title, shared.FormatDuration(song.Duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text.
func ExportToText(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Songs))

	for i, song := range export.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.Artist, song.Title)
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from url with client (default: 30s timeout) and returns the raw bytes.
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image URL", shared.ErrMissingArgument)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without songs)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// Result lists the files an export wrote.
type Result struct {
	Files      []string
	CoverImage string
}

// Exporter writes playlist exports to disk.
type Exporter struct {
	client *http.Client
	warn   func(msg string, kv ...any)
}

// NewExporter creates an exporter. client fetches cover images; warn receives non-fatal failures.
func NewExporter(client *http.Client, warn func(msg string, kv ...any)) *Exporter {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	return &Exporter{client: client, warn: warn}
}

// Write exports in format under base, which defaults to the playlist id.
//
//   - csv: {base}_songs.csv and {base}_metadata.json
//   - markdown: {base}/README.md and, when a song has a cover, {base}/cover.jpg
//   - text: {base}_songs.txt
func (x *Exporter) Write(export *PlaylistExport, format Format, base string) (*Result, error) {
	if base == "" {
		base = export.Playlist.ID
	}

	switch format {
	case FormatCSV:
		return x.writeCSV(export, base)
	case FormatMarkdown:
		return x.writeMarkdown(export, base)
	case FormatText:
		return x.writeText(export, base)
	default:
		return nil, fmt.Errorf("%w: export format %q", shared.ErrInvalidArgument, format)
	}
}

func (x *Exporter) writeCSV(export *PlaylistExport, base string) (*Result, error) {
	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := base + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &Result{Files: []string{songsFile, metadataFile}}, nil
}

func (x *Exporter) writeMarkdown(export *PlaylistExport, dir string) (*Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &Result{Files: []string{}}

	var coverFilename string
	if url := export.CoverURL(); url != "" {
		if imageData, err := DownloadImage(x.client, url); err != nil {
			x.warn("failed to download cover image", "url", url, "error", err)
		} else {
			coverPath := filepath.Join(dir, "cover.jpg")
			if err := os.WriteFile(coverPath, imageData, 0644); err != nil {
				x.warn("failed to save cover image", "path", coverPath, "error", err)
			} else {
				coverFilename = "cover.jpg"
				result.CoverImage = coverPath
				result.Files = append(result.Files, coverPath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

func (x *Exporter) writeText(export *PlaylistExport, base string) (*Result, error) {
	textData, err := ExportToText(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate text: %w", err)
	}

	path := base + "_songs.txt"
	if err := os.WriteFile(path, textData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write text file: %w", err)
	}
	return &Result{Files: []string{path}}, nil
}
