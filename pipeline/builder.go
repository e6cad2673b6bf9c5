// Package pipeline runs one document build end to end: generation, images,
// insertion, taxonomy and the draft post.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/tidwall/gjson"

	"auto_wp_seo_publisher/config"
	"auto_wp_seo_publisher/generator"
	"auto_wp_seo_publisher/images"
	"auto_wp_seo_publisher/linkcheck"
	"auto_wp_seo_publisher/logger"
	"auto_wp_seo_publisher/markup"
	"auto_wp_seo_publisher/publisher"
	"auto_wp_seo_publisher/quality"
)

// Backend is the slice of the content-management API a build uses.
// *publisher.Client satisfies it.
type Backend interface {
	images.Uploader
	publisher.TagBackend
	CreatePost(ctx context.Context, in publisher.PostInput) (publisher.Post, error)
	GetPost(ctx context.Context, id int) (publisher.Post, error)
	RecentPosts(ctx context.Context, count int, exclude []int) ([]publisher.PostSummary, error)
}

// Deps are the collaborators of a Builder. LinkChecker is optional.
type Deps struct {
	Agent       *generator.Agent
	Images      *images.Pipeline
	Backend     Backend
	LinkChecker *linkcheck.Checker
	Log         *logger.Logger
}

// Builder builds documents. It holds no per-build state and may run builds
// concurrently.
type Builder struct {
	agent      *generator.Agent
	images     *images.Pipeline
	backend    Backend
	links      *linkcheck.Checker
	categories publisher.CategoryMapper
	slots      map[int]int
	linkCount  int
	verify     bool
	log        *logger.Logger
}

func New(cfg config.Config, deps Deps) (*Builder, error) {
	if deps.Agent == nil || deps.Images == nil || deps.Backend == nil {
		return nil, errors.New("pipeline needs an agent, an image pipeline and a backend")
	}
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	b := &Builder{
		agent:      deps.Agent,
		images:     deps.Images,
		backend:    deps.Backend,
		categories: publisher.NewCategoryMapper(cfg.Categories),
		slots:      cfg.Pipeline.BodyImageSlots,
		linkCount:  cfg.Pipeline.InternalLinkCount,
		verify:     cfg.Pipeline.VerifyAfterPublish,
		log:        log,
	}
	if cfg.Pipeline.ValidateExternalLinks {
		b.links = deps.LinkChecker
	}
	return b, nil
}

// Request is one document to build.
type Request struct {
	Topic string
	// InternalLinks are always part of the link pool.
	InternalLinks []generator.LinkTarget
	// CategoryIDs overrides the keyword category rules when set.
	CategoryIDs []int
}

// Result describes a published draft and every degraded stage on the way.
type Result struct {
	PostID     int                  `json:"post_id"`
	Link       string               `json:"link"`
	Title      string               `json:"title"`
	Slug       string               `json:"slug"`
	Keyword    string               `json:"focus_keyword"`
	Categories []int                `json:"categories"`
	TagIDs     []int                `json:"tag_ids"`
	Featured   int                  `json:"featured_media"`
	Inline     int                  `json:"inline_images"`
	Appended   int                  `json:"appended_images"`
	Failures   []*generator.Failure `json:"-"`
	Quality    *quality.Report      `json:"quality,omitempty"`
}

// FailureStrings renders the degraded stages for status output.
func (r Result) FailureStrings() []string {
	out := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		out[i] = f.Error()
	}
	return out
}

// Build runs every stage for req. Only a rejected publish is fatal; any other
// failure degrades the document and is listed in Result.Failures.
func (b *Builder) Build(ctx context.Context, req Request) (Result, error) {
	if req.Topic == "" {
		return Result{}, errors.New("topic is required")
	}
	log := b.log.With("topic", req.Topic)
	var res Result

	pool, err := b.linkPool(ctx, req.InternalLinks)
	if err != nil {
		log.Warn("recent posts unavailable, using mandatory links only", "stage", "internal_links", "cause", err)
		res.Failures = append(res.Failures, &generator.Failure{Stage: "internal_links", Kind: generator.FailureCall, Err: err})
	}

	art := b.agent.Compose(ctx, req.Topic, pool)
	res.Failures = append(res.Failures, art.Failures...)
	o := art.Outline
	res.Title, res.Slug, res.Keyword = o.Title, o.Slug, o.FocusKeyword

	tasks, imgFailures := b.images.Run(ctx, images.Document{
		Slug:        o.Slug,
		Title:       o.Title,
		Keyword:     o.FocusKeyword,
		Description: o.Description,
	}, art.Images)
	res.Failures = append(res.Failures, imgFailures...)
	res.Featured = images.FeaturedID(tasks)

	content := art.Content
	if b.links != nil {
		content, _ = b.links.Fix(ctx, content)
	}
	ins := markup.InsertImages(content, images.BodyFigures(tasks), b.slots)
	res.Inline, res.Appended = ins.Inline, ins.Appended
	if ins.Appended > 0 {
		log.Warn("images appended at document end", "stage", "insert", "appended", ins.Appended, "inline", ins.Inline)
	}

	res.Categories = req.CategoryIDs
	if len(res.Categories) == 0 {
		res.Categories = b.categories.Map(o.FocusKeyword, req.Topic)
	}
	log.Info("categories mapped", "stage", "categories", "ids", res.Categories)
	res.TagIDs, _ = publisher.NewTagResolver(b.backend, log).Resolve(ctx, art.Tags)

	post, err := b.backend.CreatePost(ctx, publisher.PostInput{
		Title:         o.Title,
		Content:       ins.Content,
		Status:        publisher.StatusDraft,
		Slug:          o.Slug,
		Excerpt:       o.Description,
		Categories:    res.Categories,
		Tags:          res.TagIDs,
		FeaturedMedia: res.Featured,
		Meta: map[string]string{
			"rank_math_focus_keyword": o.FocusKeyword,
			"rank_math_description":   o.Description,
		},
	})
	if err != nil {
		log.Error("publish failed", "stage", "publish", "cause", err)
		return res, fmt.Errorf("publish %q: %w", o.Title, err)
	}
	res.PostID, res.Link = post.ID, post.Link
	log.Info("draft created", "stage", "publish", "post_id", post.ID, "link", post.Link,
		"tags", len(res.TagIDs), "inline_images", ins.Inline, "degraded", len(res.Failures))

	if b.verify {
		rep, err := Verify(ctx, b.backend, post.ID, o.FocusKeyword)
		if err != nil {
			log.Warn("verification skipped", "stage", "verify", "cause", err)
		} else {
			res.Quality = &rep
			log.Info("document verified", "stage", "verify", "score", rep.Score, "passed", rep.Passed())
		}
	}
	return res, nil
}

// linkPool is the mandatory links followed by recent published documents up to
// the configured count.
func (b *Builder) linkPool(ctx context.Context, mandatory []generator.LinkTarget) ([]generator.LinkTarget, error) {
	pool := append([]generator.LinkTarget(nil), mandatory...)
	missing := b.linkCount - len(pool)
	if missing <= 0 {
		return pool, nil
	}
	var exclude []int
	for _, l := range mandatory {
		if l.ID != 0 {
			exclude = append(exclude, l.ID)
		}
	}
	recent, err := b.backend.RecentPosts(ctx, missing, exclude)
	if err != nil {
		return pool, err
	}
	for _, p := range recent {
		pool = append(pool, generator.LinkTarget{ID: p.ID, Title: html.UnescapeString(p.Title.Rendered), URL: p.Link})
	}
	return pool, nil
}

// PostGetter fetches a stored document.
type PostGetter interface {
	GetPost(ctx context.Context, id int) (publisher.Post, error)
}

// Verify scores a stored document. An empty keyword is read from the post's
// rank_math_focus_keyword meta.
func Verify(ctx context.Context, posts PostGetter, id int, keyword string) (quality.Report, error) {
	post, err := posts.GetPost(ctx, id)
	if err != nil {
		return quality.Report{}, err
	}
	if keyword == "" && len(post.Meta) > 0 {
		keyword = gjson.GetBytes(post.Meta, "rank_math_focus_keyword").String()
	}
	return quality.Score(quality.Input{
		Title:         post.Title.Rendered,
		Content:       post.Content.Rendered,
		FocusKeyword:  keyword,
		FeaturedMedia: post.FeaturedMedia,
	})
}
