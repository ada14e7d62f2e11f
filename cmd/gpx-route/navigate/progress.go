package navigate

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

type progress struct {
	bar *progressbar.ProgressBar
}

// newProgress returns a progress bar over the legs of the path, or nil
// when w is not a terminal.
func newProgress(w *os.File, points int) *progress {
	if points < 2 || !isatty.IsTerminal(w.Fd()) {
		return nil
	}
	theme := progressbar.Theme{
		Saucer:        "=",
		SaucerHead:    ">",
		SaucerPadding: " ",
		BarStart:      "[",
		BarEnd:        "]",
	}
	bar := progressbar.NewOptions(points-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetTheme(theme),
		progressbar.OptionSetDescription("navigating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	return &progress{bar: bar}
}

func (p *progress) Set(passed, _ int) {
	_ = p.bar.Set(passed)
}

func (p *progress) Finish() {
	_ = p.bar.Finish()
}
