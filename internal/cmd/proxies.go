package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/imagemail/internal/config"
	"github.com/jimezsa/imagemail/internal/models"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Run one search and one image download through each proxy."`
}

type ProxyCheckCmd struct {
	Query   string `help:"Query used for the test search." default:"kittens"`
	Source  string `help:"Image source: google, bing." env:"IMAGEMAIL_SOURCE"`
	Timeout int    `help:"Timeout per proxy in seconds." default:"15"`
	Proxies string `help:"Comma-separated proxy URLs." env:"IMAGEMAIL_PROXIES"`
}

// ProxyCheckResult is one proxy's outcome. Status is "ok" once a search
// returned results and the first image downloaded.
type ProxyCheckResult struct {
	Proxy      string `json:"proxy"`
	Status     string `json:"status"`
	Results    int    `json:"results"`
	ImageBytes int    `json:"image_bytes"`
	LatencyMS  int64  `json:"latency_ms"`
	Error      string `json:"error,omitempty"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := firstNonEmpty(p.Source, ctx.Config.Source)
	results := make([]ProxyCheckResult, 0, len(proxies))
	for _, proxy := range proxies {
		if runCtx.Err() != nil {
			break
		}
		result := p.check(runCtx, ctx, name, proxy)
		ctx.Logger.Debug().Str("proxy", proxy).Str("status", result.Status).Int64("latency_ms", result.LatencyMS).Msg("proxy checked")
		results = append(results, result)
	}
	if err := writeProxyResults(ctx, results); err != nil {
		return err
	}
	return runCtx.Err()
}

// check goes through the same path as a run: open the source on a client
// pinned to proxy, search, then download the first result.
func (p *ProxyCheckCmd) check(parent context.Context, ctx *Context, name string, proxy string) ProxyCheckResult {
	result := ProxyCheckResult{Proxy: proxy, Status: "error"}

	timeout := time.Duration(p.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()

	src, err := ctx.openSource(checkCtx, name, proxy)
	if err != nil {
		result.Error = err.Error()
		result.LatencyMS = time.Since(start).Milliseconds()
		return result
	}

	handles, err := src.Search(checkCtx, models.SearchParams{
		Query:   p.Query,
		Count:   1,
		Filters: filtersFromConfig(ctx.Config),
	})
	result.Results = len(handles)
	if err == nil && len(handles) == 0 {
		err = fmt.Errorf("no results for %q", p.Query)
	}
	if err != nil {
		result.Error = err.Error()
		result.LatencyMS = time.Since(start).Milliseconds()
		return result
	}

	data, err := handles[0].Download(checkCtx)
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.ImageBytes = len(data)
	result.Status = "ok"
	return result
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if ctx.PlainText {
		for _, res := range results {
			line := []string{res.Proxy, res.Status, strconv.Itoa(res.Results), strconv.Itoa(res.ImageBytes), strconv.FormatInt(res.LatencyMS, 10), res.Error}
			fmt.Fprintln(ctx.Out, strings.Join(line, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\tstatus\tresults\timage_bytes\tlatency_ms\terror")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", res.Proxy, res.Status, res.Results, res.ImageBytes, res.LatencyMS, res.Error)
	}
	return tw.Flush()
}
