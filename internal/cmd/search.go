package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimezsa/imagemail/internal/export"
	"github.com/jimezsa/imagemail/internal/models"
)

type SearchCmd struct {
	Query   string `arg:"" help:"Image search query."`
	Count   int    `short:"n" help:"Number of results to list." env:"IMAGEMAIL_DEFAULT_COUNT"`
	Source  string `help:"Image source: google, bing." env:"IMAGEMAIL_SOURCE"`
	Format  string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links   string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output  string `name:"output" short:"o" help:"Write output to a file."`
	Proxies string `help:"Comma-separated proxy URLs." env:"IMAGEMAIL_PROXIES"`
}

func (s *SearchCmd) Run(ctx *Context) error {
	query := strings.TrimSpace(s.Query)
	if query == "" {
		return fmt.Errorf("query is required")
	}

	count := defaultInt(s.Count, ctx.Config.DefaultCount)
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	if ctx.Config.MaxCount > 0 && count > ctx.Config.MaxCount {
		return fmt.Errorf("count must be between 1 and %d", ctx.Config.MaxCount)
	}

	format, err := s.resolveFormat(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	src, err := ctx.openSource(runCtx, firstNonEmpty(s.Source, ctx.Config.Source), s.Proxies)
	if err != nil {
		return fmt.Errorf("open image source: %w", err)
	}

	stop := startSearchIndicator(ctx)
	handles, err := src.Search(runCtx, models.SearchParams{
		Query:   query,
		Count:   count,
		Filters: filtersFromConfig(ctx.Config),
	})
	if stop != nil {
		stop()
	}
	if err != nil {
		return err
	}
	if len(handles) > count {
		handles = handles[:count]
	}

	images := make([]models.Image, 0, len(handles))
	for _, handle := range handles {
		images = append(images, handle.Image())
	}
	ctx.Logger.Debug().Str("source", src.Name()).Int("results", len(images)).Msg("search finished")

	out := ctx.Out
	outputPath := strings.TrimSpace(s.Output)
	if outputPath != "" {
		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	opts := export.WriteOptions{
		ColorEnabled: ctx.UI != nil && ctx.UI.ColorEnabled && outputPath == "",
		Hyperlinks:   outputPath == "" && isTTY(ctx.Out),
		LinkStyle:    export.LinkStyle(s.Links),
	}
	if err := export.WriteImages(out, images, format, opts); err != nil {
		return err
	}

	if outputPath != "" && ctx.UI != nil {
		ctx.UI.Infof("Wrote %d results to %s", len(images), outputPath)
	}
	return nil
}

func (s *SearchCmd) resolveFormat(ctx *Context) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if s.Format != "" {
		return export.ParseFormat(s.Format)
	}
	if strings.TrimSpace(s.Output) != "" {
		return export.FormatCSV, nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func startSearchIndicator(ctx *Context) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return nil
	}
	if !isTTY(ctx.Err) {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2KSearching... %ds %s", seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
