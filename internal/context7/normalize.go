package context7

import (
	"bytes"
	"encoding/json"
)

// The context endpoint's response envelope is not contractually stable:
// depending on endpoint and library it answers with a bare snippet list, an
// object wrapping the list under one of several keys, or a single snippet
// object. Normalization is a fixed-priority rule chain; the first rule that
// matches wins, and no rule matching degrades to "no snippets" rather than
// an error.

// listKeys are the object keys that may wrap the snippet list, checked in
// this priority order.
var listKeys = []string{"results", "snippets", "context", "data", "items"}

// shapeRule attempts to extract a snippet list from a raw JSON body.
// It reports false when the body does not match this rule's shape.
type shapeRule func(body []byte) ([]Snippet, bool)

// shapeRules is the ordered rule chain applied by extractSnippets.
var shapeRules = []shapeRule{
	bareListRule,
	keyedListRule,
	singleSnippetRule,
}

// extractSnippets normalizes a JSON body into a flat snippet list. The
// second return value reports whether any rule matched.
func extractSnippets(body []byte) ([]Snippet, bool) {
	for _, rule := range shapeRules {
		if snips, ok := rule(body); ok {
			return snips, true
		}
	}
	return nil, false
}

// bareListRule matches a body that is already a JSON array of snippets.
func bareListRule(body []byte) ([]Snippet, bool) {
	if !startsWith(body, '[') {
		return nil, false
	}
	var snips []Snippet
	if err := json.Unmarshal(body, &snips); err != nil {
		return nil, false
	}
	return snips, true
}

// keyedListRule matches an object wrapping the snippet list under one of
// listKeys. Keys are tried in priority order and the first whose value is
// a JSON array wins; a key holding a non-array value is skipped.
func keyedListRule(body []byte) ([]Snippet, bool) {
	obj, ok := asObject(body)
	if !ok {
		return nil, false
	}

	for _, key := range listKeys {
		raw, present := obj[key]
		if !present || !startsWith(raw, '[') {
			continue
		}
		var snips []Snippet
		if err := json.Unmarshal(raw, &snips); err != nil {
			continue
		}
		return snips, true
	}
	return nil, false
}

// singleSnippetRule matches an object that itself looks like one snippet
// (it has a "content" or "title" key) and wraps it in a one-element list.
func singleSnippetRule(body []byte) ([]Snippet, bool) {
	obj, ok := asObject(body)
	if !ok {
		return nil, false
	}

	_, hasContent := obj["content"]
	_, hasTitle := obj["title"]
	if !hasContent && !hasTitle {
		return nil, false
	}

	var snip Snippet
	if err := json.Unmarshal(body, &snip); err != nil {
		return nil, false
	}
	return []Snippet{snip}, true
}

// parseLibraries normalizes the search endpoint's response: a bare list, or
// an object with the list under "results" (preferred) or "libraries".
// Anything else yields an empty list.
func parseLibraries(body []byte) []Library {
	if startsWith(body, '[') {
		var libs []Library
		if err := json.Unmarshal(body, &libs); err == nil {
			return libs
		}
		return nil
	}

	obj, ok := asObject(body)
	if !ok {
		return nil
	}
	for _, key := range []string{"results", "libraries"} {
		raw, present := obj[key]
		if !present || !startsWith(raw, '[') {
			continue
		}
		var libs []Library
		if err := json.Unmarshal(raw, &libs); err == nil {
			return libs
		}
	}
	return nil
}

// asObject decodes body as a JSON object with raw values, reporting false
// for arrays, scalars, and malformed JSON.
func asObject(body []byte) (map[string]json.RawMessage, bool) {
	if !startsWith(body, '{') {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// startsWith reports whether the first non-whitespace byte of b is c.
func startsWith(b []byte, c byte) bool {
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == c
}
