package generator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"auto_wp_seo_publisher/logger"
)

// Shuffler is the injectable random source used for link allocation and tag
// sampling. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// LockedRand makes a seeded *rand.Rand safe to share between goroutines.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// Agent runs the generation stages of one document against an LLMClient.
type Agent struct {
	llm            LLMClient
	log            *logger.Logger
	timeout        time.Duration
	rng            Shuffler
	sectionWorkers int
	tags           *TagSelector
	tagSample      int
}

// Option configures an Agent.
type Option func(*Agent)

func WithLogger(l *logger.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

// WithTimeout bounds every provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Agent) { a.timeout = d }
}

func WithRand(s Shuffler) Option {
	return func(a *Agent) {
		if s != nil {
			a.rng = s
		}
	}
}

func WithSectionConcurrency(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.sectionWorkers = n
		}
	}
}

// WithTags sets the verified tag source and how many tags a build samples.
func WithTags(sel *TagSelector, sample int) Option {
	return func(a *Agent) {
		if sel != nil {
			a.tags = sel
		}
		if sample > 0 {
			a.tagSample = sample
		}
	}
}

func NewAgent(llm LLMClient, opts ...Option) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{
		llm:            llm,
		log:            logger.NewNop(),
		timeout:        2 * time.Minute,
		rng:            NewLockedRand(time.Now().UnixNano()),
		sectionWorkers: 1,
		tagSample:      DefaultTagSample,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.tags == nil {
		sel, err := DefaultTagSelector()
		if err != nil {
			return nil, err
		}
		a.tags = sel
	}
	return a, nil
}

func (a *Agent) complete(ctx context.Context, p Prompt) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.llm.Complete(ctx, p)
}

// Compose generates every fragment of a document for topic and assembles it.
// pool is the internal link pool. Compose never fails: degraded stages are
// listed in Article.Failures and the content is built from their fallbacks.
//
// Link allocation and the external plan are fixed before any section call.
// Image planning runs alongside the section loop.
func (a *Agent) Compose(ctx context.Context, topic string, pool []LinkTarget) Article {
	var art Article
	record := func(f *Failure) {
		if f != nil {
			art.Failures = append(art.Failures, f)
		}
	}

	outline := a.PlanOutline(ctx, topic)
	record(outline.Failure)
	art.Outline = outline.Value
	kw := art.Outline.FocusKeyword

	hints := a.PlanExternalLinks(ctx, art.Outline.Sections)
	record(hints.Failure)
	alloc := Allocate(art.Outline.Sections, pool, hints.Value, a.rng)
	art.Overflow = alloc.Overflow

	var (
		images     Result[[]ImageTask]
		sections   = make([]Result[SectionDraft], len(alloc.Sections))
		g, gctx    = errgroup.WithContext(ctx)
		sectionsWG errgroup.Group
	)
	g.Go(func() error {
		images = a.PlanImages(gctx, topic, art.Outline.Title, art.Outline.Sections, kw)
		return nil
	})
	sectionsWG.SetLimit(a.sectionWorkers)
	for i, draft := range alloc.Sections {
		sectionsWG.Go(func() error {
			sections[i] = a.GenerateSection(gctx, topic, kw, draft)
			return nil
		})
	}
	_ = sectionsWG.Wait()
	_ = g.Wait()

	for _, r := range sections {
		record(r.Failure)
		art.Sections = append(art.Sections, r.Value)
	}
	record(images.Failure)
	art.Images = images.Value

	intro := a.GenerateIntro(ctx, topic, kw)
	record(intro.Failure)
	art.Intro = intro.Value

	faq := a.GenerateFAQ(ctx, topic, kw)
	record(faq.Failure)
	art.FAQ = faq.Value

	art.Content = StripImagePlaceholders(Assemble(art.Intro, art.Sections, art.Overflow, art.FAQ, kw))
	art.Tags = a.tags.Select(kw, a.tagSample, a.rng)

	a.log.Info("article composed",
		"topic", topic,
		"sections", len(art.Sections),
		"overflow", len(art.Overflow),
		"tags", len(art.Tags),
		"degraded", len(art.Failures))
	return art
}
