package publisher

import (
	"strings"

	"auto_wp_seo_publisher/config"
)

// CategoryMapper picks the category of a document from its focus keyword and
// topic.
type CategoryMapper struct {
	cfg config.CategoryConfig
}

func NewCategoryMapper(cfg config.CategoryConfig) CategoryMapper {
	return CategoryMapper{cfg: cfg}
}

// Map returns the id of the first rule with a keyword contained in keyword or
// topic, else the default id. It returns nil when neither is configured.
func (m CategoryMapper) Map(keyword, topic string) []int {
	for _, rule := range m.cfg.Rules {
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(keyword, kw) || strings.Contains(topic, kw) {
				return []int{rule.ID}
			}
		}
	}
	if m.cfg.DefaultID == 0 {
		return nil
	}
	return []int{m.cfg.DefaultID}
}
