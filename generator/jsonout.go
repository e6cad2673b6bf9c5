package generator

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var errMalformedJSON = errors.New("response is not a JSON document")

// parseJSON strips fences and validates that raw is a single JSON document.
func parseJSON(raw string) (gjson.Result, error) {
	text := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	if text == "" {
		return gjson.Result{}, ErrEmptyResponse
	}
	if !gjson.Valid(text) {
		return gjson.Result{}, errMalformedJSON
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() && !doc.IsArray() {
		return gjson.Result{}, errMalformedJSON
	}
	return doc, nil
}

// arrayField returns doc[key] when it is an array, doc itself when doc is a
// top-level array, and otherwise the first array-valued field of doc.
func arrayField(doc gjson.Result, key string) ([]gjson.Result, bool) {
	if doc.IsArray() {
		return doc.Array(), true
	}
	if v := doc.Get(key); v.IsArray() {
		return v.Array(), true
	}
	var found []gjson.Result
	ok := false
	doc.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() {
			found, ok = value.Array(), true
			return false
		}
		return true
	})
	return found, ok
}

// stringsOf flattens an array of strings, ignoring non-string entries.
func stringsOf(items []gjson.Result) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(it.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stringField reads an optional string field.
func stringField(obj gjson.Result, key string) (string, bool) {
	v := obj.Get(key)
	if !v.Exists() || v.Type != gjson.String {
		return "", false
	}
	return strings.TrimSpace(v.String()), true
}
