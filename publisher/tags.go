package publisher

import (
	"context"
	"errors"
	"html"
	"strings"
	"sync"

	"auto_wp_seo_publisher/logger"
)

// TagBackend is the lookup-or-create surface the resolver needs. *Client
// satisfies it.
type TagBackend interface {
	SearchTags(ctx context.Context, name string) ([]Tag, error)
	CreateTag(ctx context.Context, name string) (Tag, error)
}

// TagResolution maps a tag name, as given, to its term id.
type TagResolution map[string]int

// TagResolver turns tag names into term ids. A resolver remembers every name
// it resolved, so a name is searched or created at most once per resolver.
// Build one per document; concurrent builds may still race to create the same
// term.
type TagResolver struct {
	backend TagBackend
	log     *logger.Logger

	mu   sync.Mutex
	memo map[string]int
}

func NewTagResolver(backend TagBackend, log *logger.Logger) *TagResolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &TagResolver{backend: backend, log: log.Stage("tags"), memo: map[string]int{}}
}

func tagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns one id per resolvable name in first-seen order, without
// duplicates. Names that fail are logged and left out.
func (r *TagResolver) Resolve(ctx context.Context, names []string) ([]int, TagResolution) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resolution := TagResolution{}
	var ids []int
	seenIDs := map[int]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := r.resolveOne(ctx, name)
		if err != nil {
			r.log.Warn("tag skipped", "tag", name, "cause", err)
			continue
		}
		resolution[name] = id
		if !seenIDs[id] {
			seenIDs[id] = true
			ids = append(ids, id)
		}
	}
	return ids, resolution
}

func (r *TagResolver) resolveOne(ctx context.Context, name string) (int, error) {
	key := tagKey(name)
	if id, ok := r.memo[key]; ok {
		return id, nil
	}

	existing, err := r.backend.SearchTags(ctx, name)
	if err != nil {
		return 0, err
	}
	for _, t := range existing {
		if tagKey(html.UnescapeString(t.Name)) == key {
			r.memo[key] = t.ID
			return t.ID, nil
		}
	}

	created, err := r.backend.CreateTag(ctx, name)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == "term_exists" && apiErr.TermID != 0 {
			r.memo[key] = apiErr.TermID
			return apiErr.TermID, nil
		}
		return 0, err
	}
	r.log.Info("tag created", "tag", name, "tag_id", created.ID)
	r.memo[key] = created.ID
	return created.ID, nil
}
