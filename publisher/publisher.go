package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"auto_wp_seo_publisher/config"
	"auto_wp_seo_publisher/logger"
)

const apiPrefix = "/wp-json/wp/v2"

// StatusDraft is the only status the pipeline creates documents with.
const StatusDraft = "draft"

// APIError is any non-2xx answer from the REST API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Code       string
	Message    string
	// TermID is set when a create collided with an existing term.
	TermID int
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	return fmt.Sprintf("wordpress %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
		TermID int `json:"term_id"`
	} `json:"data"`
}

// Client is a thin WordPress REST client authenticated with an application
// password.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	log      *logger.Logger
}

// New builds a client for cfg. httpClient and log may be nil.
func New(cfg config.WordPressConfig, httpClient *http.Client, log *logger.Logger) (*Client, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("wordpress url, username and password are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/") + apiPrefix,
		username: cfg.Username,
		password: cfg.Password,
		client:   httpClient,
		log:      log,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("wordpress %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Code != "" {
			apiErr.Code, apiErr.Message, apiErr.TermID = eb.Code, eb.Message, eb.Data.TermID
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wordpress %s %s: decode: %w", method, path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(body), "application/json", out)
}

// MediaUpload is one file for the media library.
type MediaUpload struct {
	Filename    string
	ContentType string
	Data        []byte
	Title       string
	Caption     string
	AltText     string
	Description string
}

// Media is the library entry created by UploadMedia.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// UploadMedia posts a multipart upload with its attachment metadata.
func (c *Client) UploadMedia(ctx context.Context, up MediaUpload) (Media, error) {
	if up.Filename == "" || len(up.Data) == 0 {
		return Media{}, errors.New("upload needs a filename and data")
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "image/webp"
	}
	title := up.Title
	if title == "" {
		title = up.Filename
	}
	alt := up.AltText
	if alt == "" {
		alt = title
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, up.Filename))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return Media{}, err
	}
	if _, err := part.Write(up.Data); err != nil {
		return Media{}, err
	}
	fields := [][2]string{
		{"title", title},
		{"caption", up.Caption},
		{"alt_text", alt},
		{"description", up.Description},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return Media{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return Media{}, err
	}

	var m Media
	if err := c.do(ctx, http.MethodPost, "/media", nil, &body, writer.FormDataContentType(), &m); err != nil {
		return Media{}, err
	}
	if m.ID == 0 || m.SourceURL == "" {
		return Media{}, fmt.Errorf("wordpress upload %s: response without id or source_url", up.Filename)
	}
	c.log.Info("media uploaded", "stage", "images", "file", up.Filename, "media_id", m.ID)
	return m, nil
}

// Rendered is the WordPress {"rendered": ...} envelope.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// PostInput is the create payload of a document.
type PostInput struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Status        string            `json:"status"`
	Slug          string            `json:"slug,omitempty"`
	Excerpt       string            `json:"excerpt,omitempty"`
	Categories    []int             `json:"categories,omitempty"`
	Tags          []int             `json:"tags,omitempty"`
	FeaturedMedia int               `json:"featured_media,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// Post is a stored document. Meta is an object, or [] when no meta keys are
// registered.
type Post struct {
	ID            int             `json:"id"`
	Link          string          `json:"link"`
	Status        string          `json:"status"`
	Slug          string          `json:"slug"`
	Title         Rendered        `json:"title"`
	Content       Rendered        `json:"content"`
	FeaturedMedia int             `json:"featured_media"`
	Categories    []int           `json:"categories"`
	Tags          []int           `json:"tags"`
	Meta          json.RawMessage `json:"meta"`
}

// CreatePost stores a document. An empty status is created as a draft.
func (c *Client) CreatePost(ctx context.Context, in PostInput) (Post, error) {
	if in.Title == "" || in.Content == "" {
		return Post{}, errors.New("post needs a title and content")
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	var p Post
	if err := c.doJSON(ctx, http.MethodPost, "/posts", in, &p); err != nil {
		return Post{}, err
	}
	c.log.Info("post created", "stage", "publish", "post_id", p.ID, "status", p.Status, "link", p.Link)
	return p, nil
}

// GetPost fetches one document by id.
func (c *Client) GetPost(ctx context.Context, id int) (Post, error) {
	var p Post
	err := c.do(ctx, http.MethodGet, "/posts/"+strconv.Itoa(id), nil, nil, "", &p)
	return p, err
}

// PostSummary is the shape used for internal link targets.
type PostSummary struct {
	ID    int      `json:"id"`
	Title Rendered `json:"title"`
	Link  string   `json:"link"`
}

// RecentPosts lists up to count published documents, newest first, skipping
// the exclude ids.
func (c *Client) RecentPosts(ctx context.Context, count int, exclude []int) ([]PostSummary, error) {
	if count <= 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(count))
	q.Set("status", "publish")
	q.Set("_fields", "id,title,link")
	if len(exclude) > 0 {
		ids := make([]string, len(exclude))
		for i, id := range exclude {
			ids[i] = strconv.Itoa(id)
		}
		q.Set("exclude", strings.Join(ids, ","))
	}
	var posts []PostSummary
	if err := c.do(ctx, http.MethodGet, "/posts", q, nil, "", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Tag is a post tag term.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c *Client) SearchTags(ctx context.Context, name string) ([]Tag, error) {
	q := url.Values{}
	q.Set("search", name)
	q.Set("per_page", "100")
	var tags []Tag
	if err := c.do(ctx, http.MethodGet, "/tags", q, nil, "", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, name string) (Tag, error) {
	var t Tag
	if err := c.doJSON(ctx, http.MethodPost, "/tags", map[string]string{"name": name}, &t); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Category is a post category term.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	q := url.Values{}
	q.Set("per_page", "100")
	var cats []Category
	if err := c.do(ctx, http.MethodGet, "/categories", q, nil, "", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}
