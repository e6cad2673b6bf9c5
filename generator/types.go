package generator

// Outline is the planned skeleton of a document.
type Outline struct {
	Title           string   `json:"title"`
	FocusKeyword    string   `json:"focus_keyword"`
	Slug            string   `json:"slug"`
	Description     string   `json:"description"`
	Sections        []string `json:"sections"`
	RelatedKeywords []string `json:"related_keywords"`
}

// LinkTarget is an internal or external hyperlink destination.
type LinkTarget struct {
	ID    int    `json:"id,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ImageRole distinguishes the document's representative image from inline ones.
type ImageRole string

const (
	RoleFeatured ImageRole = "featured"
	RoleBody     ImageRole = "body"
)

// ImageTask is one planned image; MediaID and SourceURL are filled after upload.
type ImageTask struct {
	Role      ImageRole `json:"type"`
	Prompt    string    `json:"prompt"`
	AltText   string    `json:"alt"`
	Caption   string    `json:"caption"`
	MediaID   int       `json:"media_id,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
}

// Uploaded reports whether the image made it to the media library.
func (t ImageTask) Uploaded() bool {
	return t.MediaID != 0 && t.SourceURL != ""
}

// SectionDraft is one heading-delimited unit of body content.
type SectionDraft struct {
	Heading      string      `json:"heading"`
	HTML         string      `json:"html"`
	Link         *LinkTarget `json:"link,omitempty"`
	ExternalHint string      `json:"external_hint,omitempty"`
}

// Article is a fully generated document before images are placed and it is
// handed to the content-management backend.
type Article struct {
	Outline  Outline        `json:"outline"`
	Intro    string         `json:"intro"`
	Sections []SectionDraft `json:"sections"`
	Overflow []LinkTarget   `json:"overflow,omitempty"`
	FAQ      string         `json:"faq"`
	Content  string         `json:"content"`
	Tags     []string       `json:"tags"`
	Images   []ImageTask    `json:"images"`
	Failures []*Failure     `json:"-"`
}
