// Package linkcheck probes the external links of generated content and
// unwraps the ones that do not resolve.
package linkcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"auto_wp_seo_publisher/logger"
	"auto_wp_seo_publisher/markup"
)

// Checker validates external anchors. Hosts listed as internal are never
// probed or rewritten.
type Checker struct {
	client   *http.Client
	log      *logger.Logger
	workers  int
	internal map[string]bool
}

func New(client *http.Client, internalHosts []string, log *logger.Logger) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewNop()
	}
	c := &Checker{client: client, log: log.Stage("linkcheck"), workers: 4, internal: map[string]bool{}}
	for _, h := range internalHosts {
		if h = normHost(h); h != "" {
			c.internal[h] = true
		}
	}
	return c
}

// HostOf returns the host of a site URL, for building the internal host list.
func HostOf(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func normHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h)), "www.")
}

// Report summarises one Fix pass.
type Report struct {
	Checked int
	Broken  []string
}

// ExternalLinks lists the distinct external http(s) hrefs of content in
// document order.
func (c *Checker) ExternalLinks(content string) []string {
	var out []string
	seen := map[string]bool{}
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		if tok.DataAtom != atom.A {
			continue
		}
		for _, a := range tok.Attr {
			if a.Key != "href" || seen[a.Val] || !c.isExternal(a.Val) {
				continue
			}
			seen[a.Val] = true
			out = append(out, a.Val)
		}
	}
}

func (c *Checker) isExternal(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	return !c.internal[normHost(u.Hostname())]
}

// Fix probes every external link, replaces broken anchors with their text and
// opens the surviving external anchors in a new tab.
func (c *Checker) Fix(ctx context.Context, content string) (string, Report) {
	links := c.ExternalLinks(content)
	broken := make([]bool, len(links))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, link := range links {
		g.Go(func() error {
			if err := c.probe(ctx, link); err != nil {
				c.log.Warn("external link broken", "url", link, "cause", err)
				broken[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	bad := map[string]bool{}
	rep := Report{Checked: len(links)}
	for i, b := range broken {
		if b {
			bad[links[i]] = true
			rep.Broken = append(rep.Broken, links[i])
		}
	}

	content = markup.UnwrapAnchors(content, func(open string) bool {
		href, _ := markup.Attribute(open, "href")
		return bad[href]
	})
	content = markup.RewriteTags(content, "a", "href", "", func(tag string) string {
		href, _ := markup.Attribute(tag, "href")
		if !c.isExternal(href) {
			return tag
		}
		tag = markup.RewriteAttribute(tag, "target", "_blank")
		return markup.RewriteAttribute(tag, "rel", "noopener")
	})
	c.log.Info("external links checked", "checked", rep.Checked, "broken", len(rep.Broken))
	return content, rep
}

// probe tries HEAD first and falls back to GET for servers that reject it.
func (c *Checker) probe(ctx context.Context, link string) error {
	status, err := c.request(ctx, http.MethodHead, link)
	if err == nil && status < 400 {
		return nil
	}
	status, err = c.request(ctx, http.MethodGet, link)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("status %d", status)
	}
	return nil
}

func (c *Checker) request(ctx context.Context, method, link string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; wp-seo-publisher linkcheck)")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}
