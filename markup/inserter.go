package markup

import "strings"

// Block is markup to place after the heading boundary with zero-based index
// After.
type Block struct {
	After int
	HTML  string
}

// InsertResult reports where blocks ended up.
type InsertResult struct {
	Content  string
	Inline   int
	Appended int
}

// InsertAfterBoundaries walks the boundary tokens of content and appends each
// block directly after the boundary whose zero-based ordinal equals its After
// index. Blocks sharing an index keep their slice order. Blocks whose index is
// never reached are appended at the end of the document so no block is lost.
func InsertAfterBoundaries(content, boundary string, blocks []Block) InsertResult {
	if len(blocks) == 0 {
		return InsertResult{Content: content}
	}
	byIndex := make(map[int][]int, len(blocks))
	for i, blk := range blocks {
		byIndex[blk.After] = append(byIndex[blk.After], i)
	}
	placed := make([]bool, len(blocks))

	var b strings.Builder
	res := InsertResult{}
	seen := 0
	for _, tok := range SplitByBoundary(content, boundary) {
		b.WriteString(tok.Text)
		if !tok.Boundary {
			continue
		}
		for _, i := range byIndex[seen] {
			b.WriteString(blocks[i].HTML)
			placed[i] = true
			res.Inline++
		}
		seen++
	}
	for i, blk := range blocks {
		if placed[i] {
			continue
		}
		b.WriteString(blk.HTML)
		res.Appended++
	}
	res.Content = b.String()
	return res
}

// PlaceImages turns ordered body figures and a slot map (figure ordinal →
// heading index) into blocks. Figures without a slot follow the largest
// configured slot. Figures with no media are skipped.
func PlaceImages(figures []Figure, slots map[int]int) []Block {
	maxSlot := -1
	for _, h := range slots {
		if h > maxSlot {
			maxSlot = h
		}
	}
	var blocks []Block
	for i, f := range figures {
		if f.MediaID == 0 || f.SourceURL == "" {
			continue
		}
		after, ok := slots[i]
		if !ok {
			maxSlot++
			after = maxSlot
		}
		blocks = append(blocks, Block{After: after, HTML: ImageBlock(f)})
	}
	return blocks
}

// InsertImages places body figures after headings and falls back to the end of
// the document for figures whose heading does not exist.
func InsertImages(content string, figures []Figure, slots map[int]int) InsertResult {
	return InsertAfterBoundaries(content, HeadingClose, PlaceImages(figures, slots))
}
