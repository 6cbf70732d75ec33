// Package batch runs the cropper over a list of images.
//
// Every image is handled independently: a missing file, an undecodable file,
// or an image without content is reported and the run moves on to the next
// one. Nothing short of context cancellation stops a batch early.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/autocrop/internal/imaging"
)

// Job is one image to crop.
type Job struct {
	Input   string          `json:"input"`
	Output  string          `json:"output"`
	Options imaging.Options `json:"options"`
}

// WithSuffix inserts suffix before the extension of path. An empty suffix
// returns path unchanged, so the input is overwritten.
func WithSuffix(path, suffix string) string {
	if suffix == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// Status is the outcome of one job.
type Status string

const (
	StatusCropped   Status = "cropped"
	StatusNoContent Status = "no-content"
	StatusNotFound  Status = "not-found"
	StatusError     Status = "error"
)

// Result is the outcome of one job.
type Result struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Status Status `json:"status"`

	// Crop is set when Status is StatusCropped.
	Crop *imaging.AutoCropResult `json:"crop,omitempty"`

	// Written is false for dry runs.
	Written bool `json:"written"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Summary collects the results of a run in job order.
type Summary struct {
	Results   []Result `json:"results"`
	Cropped   int      `json:"cropped"`
	NoContent int      `json:"no_content"`
	NotFound  int      `json:"not_found"`
	Failed    int      `json:"failed"`
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d cropped, %d without content, %d not found, %d failed",
		s.Cropped, s.NoContent, s.NotFound, s.Failed)
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusCropped:
		s.Cropped++
	case StatusNoContent:
		s.NoContent++
	case StatusNotFound:
		s.NotFound++
	default:
		s.Failed++
	}
}

// Runner crops batches of images. The zero value processes one image at a
// time, reads with imaging.Open, writes with imaging.Save and reports nothing.
type Runner struct {
	// Workers is the number of images processed concurrently. Values below 1
	// mean 1. The report is printed in job order either way.
	Workers int

	// DryRun computes crops without writing them.
	DryRun bool

	// Out receives the human-readable per-image report. Nil discards it.
	Out io.Writer

	Log *zap.Logger

	// Load reads an input image. Defaults to imaging.Open.
	Load func(path string) (image.Image, error)

	// Written is called after an output file has been replaced.
	Written func(path string)
}

// Run processes jobs and returns their results in job order.
func (r *Runner) Run(ctx context.Context, jobs []Job) *Summary {
	workers := max(1, min(r.Workers, len(jobs)))
	results := make([]Result, len(jobs))
	done := make([]chan struct{}, len(jobs))
	for i := range done {
		done[i] = make(chan struct{})
	}

	queue := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = r.Process(ctx, jobs[i])
				close(done[i])
			}
		}()
	}

	go func() {
		defer close(queue)
		for i := range jobs {
			queue <- i
		}
	}()

	summary := &Summary{Results: make([]Result, 0, len(jobs))}
	for i := range jobs {
		<-done[i]
		r.report(results[i])
		summary.add(results[i])
	}
	wg.Wait()

	r.logger().Info("batch finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("cropped", summary.Cropped),
		zap.Int("no_content", summary.NoContent),
		zap.Int("not_found", summary.NotFound),
		zap.Int("failed", summary.Failed))
	return summary
}

// Process runs a single job. Failures are captured in the Result.
func (r *Runner) Process(ctx context.Context, job Job) Result {
	res := Result{Input: job.Input, Output: job.Output}
	log := r.logger().With(zap.String("input", job.Input))

	if err := ctx.Err(); err != nil {
		return res.fail(StatusError, err)
	}

	output := job.Output
	if output == "" {
		output = job.Input
		res.Output = output
	}

	start := time.Now()
	load := r.Load
	if load == nil {
		load = imaging.Open
	}
	img, err := load(job.Input)
	if err != nil {
		if errors.Is(err, imaging.ErrNotFound) {
			log.Warn("input not found", zap.Error(err))
			return res.fail(StatusNotFound, err)
		}
		log.Warn("failed to load input", zap.Error(err))
		return res.fail(StatusError, err)
	}

	crop, err := imaging.AutoCrop(img, job.Options)
	if errors.Is(err, imaging.ErrNoContent) {
		log.Info("no content found")
		return res.fail(StatusNoContent, err)
	}
	if err != nil {
		log.Warn("crop failed", zap.Error(err))
		return res.fail(StatusError, err)
	}
	res.Crop = crop

	log.Debug("content located",
		zap.Stringer("background", crop.Background),
		zap.Stringer("content", crop.Content),
		zap.Stringer("box", crop.Box),
		zap.Int("flattened", crop.Flattened))

	if !r.DryRun {
		if err := imaging.Save(output, crop.Image); err != nil {
			log.Warn("failed to save output", zap.String("output", output), zap.Error(err))
			return res.fail(StatusError, err)
		}
		res.Written = true
		if r.Written != nil {
			r.Written(output)
		}
	}

	res.Status = StatusCropped
	log.Debug("cropped",
		zap.String("output", output),
		zap.Bool("written", res.Written),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

func (res Result) fail(status Status, err error) Result {
	res.Status = status
	res.Err = err
	res.Error = err.Error()
	return res
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// report prints one result the way the asset scripts always have.
func (r *Runner) report(res Result) {
	if r.Out == nil {
		return
	}
	w := r.Out
	switch res.Status {
	case StatusCropped:
		c := res.Crop
		if res.Written {
			fmt.Fprintf(w, "Cropped %s\n", res.Input)
		} else {
			fmt.Fprintf(w, "Would crop %s to %s\n", res.Input, c.Box)
		}
		fmt.Fprintf(w, "  Original size: %dx%d\n", c.OriginalWidth, c.OriginalHeight)
		fmt.Fprintf(w, "  Cropped size: %dx%d\n", c.Width, c.Height)
		if res.Written {
			fmt.Fprintf(w, "  Saved to: %s\n", res.Output)
		}
	case StatusNoContent:
		fmt.Fprintf(w, "No content found in %s\n", res.Input)
	case StatusNotFound:
		fmt.Fprintf(w, "File not found: %s\n", res.Input)
	default:
		fmt.Fprintf(w, "Error processing %s: %v\n", res.Input, res.Err)
	}
	fmt.Fprintln(w)
}
