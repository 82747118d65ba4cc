// Package jsonrecover extracts and repairs near-valid JSON from free
// model text, and validates the result against a JSON Schema before any
// caller trusts it.
//
// Language models wrap JSON in prose, markdown fences, comments, and
// trailing commas. The recovery strategies run in order of increasing
// aggressiveness: direct parse, fenced-block extraction, balanced-brace
// extraction with cleanup. Irrecoverable input yields the caller's
// typed fallback rather than an error — the assessment pipeline treats
// a malformed model reply as a degraded analysis, not a request
// failure.
package jsonrecover

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	fencedJSON  = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")
	fencedPlain = regexp.MustCompile("(?s)```\\s*\\n(.*?)\\n```")

	lineComment  = regexp.MustCompile(`(?m)//.*?$`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailComma   = regexp.MustCompile(`,\s*([}\]])`)
	singleQuoted = regexp.MustCompile(`'([^']*?)'(\s*[,}\]:])`)
)

// Parse recovers a JSON document from text and unmarshals it into v.
// It reports whether recovery succeeded; on false, v is untouched and
// the caller should fall back to its typed default.
func Parse(text string, v any) bool {
	raw, ok := Recover(text)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// Recover extracts the best JSON candidate from text and returns it
// when it parses. The strategies, in order:
//
//  1. The whole input, as is.
//  2. A ```json fenced block, or any fenced block starting with { or [.
//  3. The first balanced object or array found in the text, after
//     stripping comments, trailing commas, and single-quoted strings.
func Recover(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if gjson.Valid(text) {
		return text, true
	}

	if block, ok := fencedBlock(text); ok {
		if gjson.Valid(block) {
			return block, true
		}
		if cleaned := cleanup(block); gjson.Valid(cleaned) {
			return cleaned, true
		}
	}

	candidate := balancedSlice(text)
	if gjson.Valid(candidate) {
		return candidate, true
	}
	if cleaned := cleanup(candidate); gjson.Valid(cleaned) {
		return cleaned, true
	}
	return "", false
}

// Field extracts a single field from recovered JSON by gjson path,
// for callers that need one value out of an otherwise untrusted reply.
func Field(text, path string) (gjson.Result, error) {
	raw, ok := Recover(text)
	if !ok {
		return gjson.Result{}, fmt.Errorf("jsonrecover: no recoverable JSON in input")
	}
	res := gjson.Get(raw, path)
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("jsonrecover: path %q not found", path)
	}
	return res, nil
}

func fencedBlock(text string) (string, bool) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := fencedPlain.FindStringSubmatch(text); m != nil {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content, true
		}
	}
	return "", false
}

// balancedSlice returns the first balanced {...} or [...] region of
// text, tracking strings and escapes so braces inside values do not
// miscount. Unterminated input returns everything from the opener on.
func balancedSlice(text string) string {
	brace := strings.IndexByte(text, '{')
	bracket := strings.IndexByte(text, '[')

	var start int
	var open, closing byte
	switch {
	case brace == -1 && bracket == -1:
		return text
	case brace != -1 && (bracket == -1 || brace < bracket):
		start, open, closing = brace, '{', '}'
	default:
		start, open, closing = bracket, '[', ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

// cleanup strips the formatting habits models pick up from code:
// comments, trailing commas, and single-quoted strings.
func cleanup(text string) string {
	text = lineComment.ReplaceAllString(text, "")
	text = blockComment.ReplaceAllString(text, "")
	text = trailComma.ReplaceAllString(text, "$1")
	text = singleQuoted.ReplaceAllString(text, `"$1"$2`)
	return strings.TrimSpace(text)
}
