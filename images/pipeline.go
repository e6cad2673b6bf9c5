package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"auto_wp_seo_publisher/generator"
	"auto_wp_seo_publisher/logger"
	"auto_wp_seo_publisher/markup"
	"auto_wp_seo_publisher/publisher"
)

// Uploader stores an encoded image in the media library. *publisher.Client
// satisfies it.
type Uploader interface {
	UploadMedia(ctx context.Context, up publisher.MediaUpload) (publisher.Media, error)
}

// Pipeline synthesizes, re-encodes and uploads the planned images of one
// document with a bounded worker pool.
type Pipeline struct {
	synth     Synthesizer
	proc      *Processor
	uploader  Uploader
	log       *logger.Logger
	workers   int
	outputDir string
	timeout   time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithCallTimeout bounds the synthesis, download and upload of each image.
func WithCallTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithOutputDir keeps a local copy of every encoded image in dir.
func WithOutputDir(dir string) PipelineOption {
	return func(p *Pipeline) { p.outputDir = dir }
}

func WithPipelineLogger(l *logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

func NewPipeline(synth Synthesizer, proc *Processor, uploader Uploader, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		synth:    synth,
		proc:     proc,
		uploader: uploader,
		log:      logger.NewNop(),
		workers:  2,
		timeout:  2 * time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Stage("images")
	return p
}

// Document is what the upload metadata is derived from.
type Document struct {
	Slug        string
	Title       string
	Keyword     string
	Description string
}

// Run processes every task and returns a copy with MediaID and SourceURL set
// on the ones that made it. Images fail independently: a failed image is
// logged, reported in the failure list and left without media.
func (p *Pipeline) Run(ctx context.Context, doc Document, tasks []generator.ImageTask) ([]generator.ImageTask, []*generator.Failure) {
	out := make([]generator.ImageTask, len(tasks))
	copy(out, tasks)
	errs := make([]error, len(tasks))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range out {
		g.Go(func() error {
			media, err := p.one(ctx, doc, i, out[i])
			if err != nil {
				errs[i] = err
				return nil
			}
			out[i].MediaID, out[i].SourceURL = media.ID, media.SourceURL
			return nil
		})
	}
	_ = g.Wait()

	var failures []*generator.Failure
	uploaded := 0
	for i, err := range errs {
		if err == nil {
			uploaded++
			continue
		}
		p.log.Warn("image skipped", "index", i, "role", out[i].Role, "cause", err)
		failures = append(failures, &generator.Failure{Stage: "images", Kind: generator.FailureCall, Err: fmt.Errorf("image %d: %w", i, err)})
	}
	p.log.Info("images processed", "uploaded", uploaded, "planned", len(tasks))
	return out, failures
}

func (p *Pipeline) one(ctx context.Context, doc Document, i int, task generator.ImageTask) (publisher.Media, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	url, err := p.synth.Synthesize(ctx, task.Prompt)
	if err != nil {
		return publisher.Media{}, fmt.Errorf("synthesize: %w", err)
	}
	data, err := p.proc.Fetch(ctx, url)
	if err != nil {
		return publisher.Media{}, err
	}
	name := FileName(doc.Slug, i)
	if p.outputDir != "" {
		if err := saveCopy(p.outputDir, name, data); err != nil {
			p.log.Warn("local copy not saved", "file", name, "cause", err)
		}
	}

	up := publisher.MediaUpload{
		Filename:    name,
		ContentType: "image/webp",
		Data:        data,
		Caption:     task.Caption,
		AltText:     task.AltText,
	}
	if task.Role == generator.RoleFeatured {
		up.Title = doc.Title
		up.Description = doc.Description
	} else {
		up.Title = fmt.Sprintf("%s_%d", doc.Keyword, i)
	}
	media, err := p.uploader.UploadMedia(ctx, up)
	if err != nil {
		return publisher.Media{}, fmt.Errorf("upload: %w", err)
	}
	return media, nil
}

// FileName is the media file name of the i-th planned image.
func FileName(slug string, i int) string {
	if i == 0 {
		return slug + "_thumb.webp"
	}
	return fmt.Sprintf("%s_body_%d.webp", slug, i)
}

func saveCopy(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

// FeaturedID is the media id of the uploaded featured image, or 0.
func FeaturedID(tasks []generator.ImageTask) int {
	for _, t := range tasks {
		if t.Role == generator.RoleFeatured && t.Uploaded() {
			return t.MediaID
		}
	}
	return 0
}

// BodyFigures lists the body images in plan order as insertable figures.
// Images that were not uploaded are kept so their slot ordinal is stable; the
// inserter skips them.
func BodyFigures(tasks []generator.ImageTask) []markup.Figure {
	var figs []markup.Figure
	for _, t := range tasks {
		if t.Role != generator.RoleBody {
			continue
		}
		figs = append(figs, markup.Figure{
			MediaID:   t.MediaID,
			SourceURL: t.SourceURL,
			Alt:       t.AltText,
			Caption:   t.Caption,
		})
	}
	return figs
}
