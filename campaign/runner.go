package campaign

import (
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"

	"auto_wp_seo_publisher/generator"
	"auto_wp_seo_publisher/logger"
	"auto_wp_seo_publisher/pipeline"
	"auto_wp_seo_publisher/publisher"
)

// Builder builds one document. *pipeline.Builder satisfies it.
type Builder interface {
	Build(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// PostGetter looks up existing documents for recovery entries.
type PostGetter interface {
	GetPost(ctx context.Context, id int) (publisher.Post, error)
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step      int
	Topic     string
	PostID    int
	Title     string
	Link      string
	Recovered bool
	Failures  []string
}

// Runner executes campaigns step by step.
type Runner struct {
	builder Builder
	posts   PostGetter
	ledger  *Ledger
	log     *logger.Logger
}

// NewRunner builds a runner. The ledger is optional; without one, --resume has
// nothing to resume from.
func NewRunner(b Builder, posts PostGetter, ledger *Ledger, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{builder: b, posts: posts, ledger: ledger, log: log.Stage("campaign")}
}

// Run executes c. Each step links to the anchor links and every earlier
// document. With resume set, steps found in the ledger are treated as
// recovery entries. The first failed step aborts the run; the results of the
// completed steps are returned with the error.
func (r *Runner) Run(ctx context.Context, c *Campaign, resume bool) ([]StepResult, error) {
	runID := uuid.NewString()
	log := r.log.With("campaign", c.Name, "run_id", runID)

	recorded := map[int]Entry{}
	if resume && r.ledger != nil {
		var err error
		if recorded, err = r.ledger.Entries(ctx, c.Name); err != nil {
			return nil, err
		}
		log.Info("resuming campaign", "recorded_steps", len(recorded))
	}

	links := append([]generator.LinkTarget(nil), c.AnchorLinks...)
	var results []StepResult
	for i, step := range c.Steps {
		n := i + 1
		if e, ok := recorded[n]; ok && !step.Recovered() {
			step = Step{Topic: e.Topic, PostID: e.PostID, Title: e.Title, Link: e.Link}
		}

		var (
			res StepResult
			err error
		)
		if step.Recovered() {
			res, err = r.recover(ctx, n, step)
		} else {
			res, err = r.build(ctx, c, n, step, links)
		}
		if err != nil {
			log.Error("campaign aborted", "step", n, "topic", step.Topic, "cause", err)
			return results, fmt.Errorf("step %d (%s): %w", n, step.Topic, err)
		}
		results = append(results, res)
		links = append(links, generator.LinkTarget{ID: res.PostID, Title: res.Title, URL: res.Link})
		log.Info("step done", "step", n, "post_id", res.PostID, "recovered", res.Recovered)
	}
	log.Info("campaign finished", "steps", len(results))
	return results, nil
}

func (r *Runner) build(ctx context.Context, c *Campaign, n int, step Step, links []generator.LinkTarget) (StepResult, error) {
	out, err := r.builder.Build(ctx, pipeline.Request{
		Topic:         step.Topic,
		InternalLinks: links,
		CategoryIDs:   c.CategoryIDs,
	})
	if err != nil {
		return StepResult{}, err
	}
	res := StepResult{
		Step:     n,
		Topic:    step.Topic,
		PostID:   out.PostID,
		Title:    out.Title,
		Link:     out.Link,
		Failures: out.FailureStrings(),
	}
	if r.ledger != nil {
		err := r.ledger.Record(ctx, Entry{Campaign: c.Name, Step: n, Topic: step.Topic, PostID: res.PostID, Title: res.Title, Link: res.Link})
		if err != nil {
			r.log.Warn("ledger write failed", "step", n, "cause", err)
		}
	}
	return res, nil
}

// recover fills a recovery entry's missing title or link from the backend.
func (r *Runner) recover(ctx context.Context, n int, step Step) (StepResult, error) {
	res := StepResult{Step: n, Topic: step.Topic, PostID: step.PostID, Title: step.Title, Link: step.Link, Recovered: true}
	if res.Title != "" && res.Link != "" {
		return res, nil
	}
	if r.posts == nil {
		return StepResult{}, fmt.Errorf("post %d: title and link are required without a backend", step.PostID)
	}
	post, err := r.posts.GetPost(ctx, step.PostID)
	if err != nil {
		return StepResult{}, fmt.Errorf("recover post %d: %w", step.PostID, err)
	}
	if res.Title == "" {
		res.Title = html.UnescapeString(post.Title.Rendered)
	}
	if res.Link == "" {
		res.Link = post.Link
	}
	return res, nil
}
