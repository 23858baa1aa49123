// package formatter renders catalogue listings as JSON, CSV, Markdown, HTML or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/luoyiti/web-video-player/internal/catalog"
	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// ParseFormat accepts a format name or a common alias (md, htm, txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Export is a titled catalogue listing.
type Export struct {
	Title   string
	Tag     string // active filter, "" for none
	Entries []catalog.LibraryEntry
}

// NewExport builds an [Export] from items of a single kind.
func NewExport(title, tag string, kind models.Kind, items []models.MediaItem) *Export {
	entries := make([]catalog.LibraryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, catalog.LibraryEntry{Kind: kind, Item: item})
	}
	return &Export{Title: title, Tag: tag, Entries: entries}
}

// Count returns the number of entries of the given kind.
func (e *Export) Count(kind models.Kind) int {
	n := 0
	for _, entry := range e.Entries {
		if entry.Kind == kind {
			n++
		}
	}
	return n
}

type jsonEntry struct {
	Kind models.Kind `json:"kind"`
	models.MediaItem
}

// Render encodes the export in the given format.
func Render(format Format, export *Export) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatHTML:
		return ExportToHTML(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToJSON encodes the entries as an indented JSON array.
func ExportToJSON(export *Export) ([]byte, error) {
	entries := make([]jsonEntry, 0, len(export.Entries))
	for _, e := range export.Entries {
		entries = append(entries, jsonEntry{Kind: e.Kind, MediaItem: e.Item})
	}
	return shared.MarshalJSON(entries, true)
}

// ExportToCSV converts an Export to CSV format with columns: Kind, ID, Title, Src, Tags, BackendID, Local
//
// Tags are joined with ";".
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "ID", "Title", "Src", "Tags", "BackendID", "Local"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range export.Entries {
		item := entry.Item
		backendID := ""
		if item.BackendID > 0 {
			backendID = strconv.FormatInt(item.BackendID, 10)
		}
		record := []string{
			entry.Kind.String(),
			strconv.FormatInt(item.ID, 10),
			item.Title,
			item.Src,
			strings.Join(item.Tags, ";"),
			backendID,
			strconv.FormatBool(item.IsLocal),
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

// ExportToMarkdown converts an Export to Markdown with one section per kind.
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	if export.Tag != "" {
		fmt.Fprintf(&buf, "**Filter**: #%s\n", export.Tag)
	}
	fmt.Fprintf(&buf, "**Items**: %d\n\n", len(export.Entries))

	for _, kind := range []models.Kind{models.KindVideo, models.KindPhoto} {
		if export.Count(kind) == 0 {
			continue
		}

		fmt.Fprintf(&buf, "## %s\n\n", sectionTitle(kind))
		i := 0
		for _, entry := range export.Entries {
			if entry.Kind != kind {
				continue
			}
			i++
			fmt.Fprintf(&buf, "%d. %s (`%s`)%s\n", i, entry.Item.Title, entry.Item.Src, markdownTags(entry.Item.Tags))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

var (
	markdownOnce     sync.Once
	markdownRenderer goldmark.Markdown
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownRenderer
}

// ExportToHTML renders the Markdown listing as a standalone HTML page.
//
// Raw HTML in titles is not passed through.
func ExportToHTML(export *Export) ([]byte, error) {
	md, err := ExportToMarkdown(export)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := markdown().Convert(md, &body); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(export.Title))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Catalogue: %s\n", export.Title)
	if export.Tag != "" {
		fmt.Fprintf(&buf, "Filter: %s\n", export.Tag)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(export.Entries))

	for i, entry := range export.Entries {
		item := entry.Item
		marker := ""
		if item.IsLocal {
			marker = " (local)"
		}
		fmt.Fprintf(&buf, "%d. [%s] %s - %s%s\n", i+1, entry.Kind, item.Title, item.Src, marker)
		if len(item.Tags) > 0 {
			fmt.Fprintf(&buf, "   tags: %s\n", strings.Join(item.Tags, ", "))
		}
	}

	return buf.Bytes(), nil
}

// Metadata summarises an export.
type Metadata struct {
	Title  string `json:"title"`
	Tag    string `json:"tag,omitempty"`
	Items  int    `json:"items"`
	Videos int    `json:"videos"`
	Photos int    `json:"photos"`
}

// ToMetadataJSON generates a JSON summary of the export (without entries)
func ToMetadataJSON(export *Export) ([]byte, error) {
	return shared.MarshalJSON(Metadata{
		Title:  export.Title,
		Tag:    export.Tag,
		Items:  len(export.Entries),
		Videos: export.Count(models.KindVideo),
		Photos: export.Count(models.KindPhoto),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a listing to CSV with an accompanying metadata JSON file.
//
// Creates {base}_items.csv and {base}_metadata.json; base defaults to "catalog".
func WriteCSVExport(export *Export, base string) (*CSVExportResult, error) {
	if base == "" {
		base = "catalog"
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := base + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{ItemsFile: itemsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport writes {dir}/README.md, creating dir (default "catalog").
func WriteMarkdownExport(export *Export, dir string) (string, error) {
	if dir == "" {
		dir = "catalog"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return mdFile, nil
}

// WriteFile renders the export in format and writes it to path.
//
// Defaults to catalog.{ext} as the filename.
func WriteFile(format Format, export *Export, path string) (string, error) {
	if path == "" {
		path = "catalog." + Extension(format)
	}

	data, err := Render(format, export)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

// Extension returns the file extension used for format.
func Extension(format Format) string {
	switch format {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(format)
	}
}

func sectionTitle(kind models.Kind) string {
	if kind == models.KindPhoto {
		return "Photos"
	}
	return "Videos"
}

func markdownTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = "#" + tag
	}
	return " " + strings.Join(parts, " ")
}
