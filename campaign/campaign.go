// Package campaign runs chained multi-document builds where every document
// links back to the ones before it.
package campaign

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"auto_wp_seo_publisher/generator"
)

// Campaign is a YAML campaign definition.
type Campaign struct {
	Name        string                 `yaml:"name"`
	CategoryIDs []int                  `yaml:"category_ids"`
	AnchorLinks []generator.LinkTarget `yaml:"anchor_links"`
	Steps       []Step                 `yaml:"steps"`
}

// Step is one document of a campaign. A step with PostID set is a recovery
// entry for a document that already exists.
type Step struct {
	Topic  string `yaml:"topic"`
	PostID int    `yaml:"post_id,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Link   string `yaml:"link,omitempty"`
}

// Recovered reports whether the step refers to an existing document.
func (s Step) Recovered() bool { return s.PostID != 0 }

// Load reads and validates the campaign at path.
func Load(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read campaign %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a campaign definition.
func Parse(data []byte) (*Campaign, error) {
	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Campaign) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return errors.New("name is required")
	}
	if len(c.Steps) == 0 {
		return errors.New("at least one step is required")
	}
	for i, s := range c.Steps {
		if strings.TrimSpace(s.Topic) == "" && !s.Recovered() {
			return fmt.Errorf("step %d: topic or post_id is required", i+1)
		}
		if s.PostID < 0 {
			return fmt.Errorf("step %d: invalid post_id %d", i+1, s.PostID)
		}
	}
	for i, l := range c.AnchorLinks {
		if l.URL == "" {
			return fmt.Errorf("anchor link %d: url is required", i+1)
		}
	}
	return nil
}
