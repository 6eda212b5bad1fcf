package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xymaxim/fmtinfo/internal/app"
	"github.com/xymaxim/fmtinfo/internal/pathutil"
)

type Info struct {
	SourceFlags
	URL    string `arg:"" help:"Video URL"`
	Source string `help:"Source to extract with (${enum})" short:"s" default:"ytdlp" enum:"ytdlp,youtube,vidssave"`
	Save   string `help:"Save the report as JSON into this directory" type:"path"`
}

func (c *Info) Run(ctx context.Context) error {
	c.Sources = []string{c.Source}
	svc, err := c.buildService(true)
	if err != nil {
		return err
	}

	resp, err := svc.Describe(ctx, app.ResolveSourceName(c.Source), c.URL)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if c.Save == "" {
		fmt.Println(string(out))
		return nil
	}

	if err := os.MkdirAll(c.Save, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := pathutil.BuildReportName(c.Save, resp.Title, resp.Source, time.Now())
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil { // #nosec: G306
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("(<<) Report saved to %s\n", path)

	return nil
}
