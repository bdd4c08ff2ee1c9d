package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// barProgress reports corpus build progress on a terminal.
type barProgress struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

func newBarProgress(total int, out io.Writer) *barProgress {
	return &barProgress{
		out: out,
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Indexing recipes"),
			progressbar.OptionSetWriter(out),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			})),
	}
}

func (p *barProgress) Add(n int) error {
	if err := p.bar.Add(n); err != nil {
		return fmt.Errorf("progress bar: %w", err)
	}
	return nil
}

func (p *barProgress) Close() {
	_ = p.bar.Finish()
	_, _ = fmt.Fprint(p.out, "\r\033[K")
}
