package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/imagemail/internal/models"
	"github.com/jimezsa/imagemail/internal/ui"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tsv":
		return FormatTSV, nil
	case "table", "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

// WriteImages lists search results without downloading them.
func WriteImages(w io.Writer, images []models.Image, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, images)
	case FormatCSV:
		return writeCSV(w, images, ',')
	case FormatTSV:
		return writeCSV(w, images, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, images)
	default:
		return writeTable(w, images, opts)
	}
}

func writeJSON(w io.Writer, images []models.Image) error {
	if images == nil {
		images = []models.Image{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(images)
}

func writeCSV(w io.Writer, images []models.Image, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for i, image := range images {
		if err := writer.Write(csvRow(i+1, image)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, images []models.Image, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for i, image := range images {
		fmt.Fprintln(tw, strings.Join(tableRow(i+1, image, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, images []models.Image) error {
	if len(images) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for i, image := range images {
		title := safe(image.Title)
		if title == "" {
			title = "untitled"
		}
		lines := []string{
			fmt.Sprintf("%d. **%s** (%s)", i+1, title, safe(image.Source)),
			fmt.Sprintf("   Image: [%s](<%s>)", shortURLLabel(image.URL), safe(image.URL)),
		}
		if page := safe(image.ContextURL); page != "" {
			lines = append(lines, fmt.Sprintf("   Page: <%s>", page))
		}
		if image.Width > 0 && image.Height > 0 {
			lines = append(lines, fmt.Sprintf("   Size: %dx%d", image.Width, image.Height))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"index",
		"source",
		"title",
		"url",
		"context_url",
		"mime",
		"width",
		"height",
	}
}

func csvRow(index int, image models.Image) []string {
	return []string{
		strconv.Itoa(index),
		image.Source,
		image.Title,
		image.URL,
		image.ContextURL,
		image.MIME,
		dimension(image.Width),
		dimension(image.Height),
	}
}

func dimension(value int64) string {
	if value <= 0 {
		return ""
	}
	return strconv.FormatInt(value, 10)
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func tableHeader() []string {
	return []string{
		"#",
		"source",
		"title",
		"url",
	}
}

func tableRow(index int, image models.Image, output *termenv.Output, opts WriteOptions) []string {
	link := safe(image.URL)
	displayURL := "-"
	if link != "" {
		displayURL = link
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(link)
		}
		displayURL = ui.ColorizeLink(output, opts.ColorEnabled, displayURL)
		if opts.Hyperlinks {
			displayURL = hyperlink(link, displayURL)
		}
	}
	return []string{
		strconv.Itoa(index),
		safe(image.Source),
		safe(image.Title),
		displayURL,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
