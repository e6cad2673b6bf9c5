package generator

import "strings"

// Allocation is the per-section link assignment of one document.
type Allocation struct {
	Sections []SectionDraft
	// Overflow holds pool links no section received; rendered as the
	// related-links block.
	Overflow []LinkTarget
}

// Allocate gives every heading one internal link, round-robin over a shuffled
// copy of pool, and the hint at the same index. Links beyond one per section
// are returned as overflow. pool is deduplicated by URL and never modified.
func Allocate(headings []string, pool []LinkTarget, hints []string, shuffle Shuffler) Allocation {
	links := uniqueLinks(pool)
	if shuffle != nil && len(links) > 1 {
		shuffle.Shuffle(len(links), func(i, j int) { links[i], links[j] = links[j], links[i] })
	}

	alloc := Allocation{Sections: make([]SectionDraft, len(headings))}
	for i, h := range headings {
		d := SectionDraft{Heading: h}
		if len(links) > 0 {
			l := links[i%len(links)]
			d.Link = &l
		}
		if i < len(hints) {
			d.ExternalHint = hints[i]
		}
		alloc.Sections[i] = d
	}
	if len(links) > len(headings) {
		alloc.Overflow = append([]LinkTarget(nil), links[len(headings):]...)
	}
	return alloc
}

func uniqueLinks(pool []LinkTarget) []LinkTarget {
	seen := make(map[string]bool, len(pool))
	out := make([]LinkTarget, 0, len(pool))
	for _, l := range pool {
		key := strings.TrimRight(strings.TrimSpace(l.URL), "/")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}
