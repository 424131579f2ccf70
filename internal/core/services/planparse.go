package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

var codeFencePattern = regexp.MustCompile("(?i)```(?:json)?")

// ParseResult is the outcome of parsing a model reply into an object.
type ParseResult struct {
	// Value is set on success.
	Value map[string]any

	// Stage names the parser that succeeded.
	Stage string

	// Cleaned is the text the parsers were given.
	Cleaned string

	// Err is set when every stage failed; it holds the last stage's error.
	Err error
}

// OK reports whether a stage succeeded.
func (r ParseResult) OK() bool {
	return r.Err == nil && r.Value != nil
}

// parseStage is one fallible parser in the chain.
type parseStage struct {
	name  string
	parse func(string) (map[string]any, error)
}

// planStages run in order; the first success wins.
var planStages = []parseStage{
	{name: "json", parse: parseJSONObject},
	{name: "literal", parse: parseLiteralObject},
	{name: "quotes", parse: parseRequotedObject},
}

// ParseModelObject extracts a JSON-like object from a model reply.
func ParseModelObject(raw string) ParseResult {
	cleaned := CleanModelReply(raw)
	res := ParseResult{Cleaned: cleaned}
	for _, st := range planStages {
		v, err := st.parse(cleaned)
		if err == nil {
			res.Value = v
			res.Stage = st.name
			res.Err = nil
			return res
		}
		res.Err = err
	}
	return res
}

// CleanModelReply strips code fences and surrounding quotes, then keeps
// the text from the first '{' to the last '}'.
func CleanModelReply(raw string) string {
	text := strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' || first == '\'') && first == last {
			text = strings.TrimSpace(text[1 : len(text)-1])
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return text
}

func parseJSONObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: reply is not an object", domain.ErrParse)
	}
	return obj, nil
}

// parseLiteralObject accepts single-quoted strings, True/False/None and
// trailing commas by rewriting them into JSON.
func parseLiteralObject(text string) (map[string]any, error) {
	converted, err := literalToJSON(text)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(converted)
}

func parseRequotedObject(text string) (map[string]any, error) {
	return parseJSONObject(strings.ReplaceAll(text, "'", `"`))
}

var literalWords = map[string]string{
	"True":  "true",
	"False": "false",
	"None":  "null",
}

var errUnterminatedString = errors.New("unterminated string")

// literalToJSON rewrites literal syntax outside of strings. Strings are
// re-emitted double-quoted with JSON escaping.
func literalToJSON(text string) (string, error) {
	var out strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"' || c == '\'':
			s, next, err := readQuoted(runes, i)
			if err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrParse, err)
			}
			b, _ := json.Marshal(s)
			out.Write(b)
			i = next
		case c == ',':
			j := i + 1
			for j < len(runes) && isSpace(runes[j]) {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue
			}
			out.WriteRune(c)
		case isIdentStart(c):
			j := i
			for j < len(runes) && isIdentPart(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			if repl, ok := literalWords[word]; ok {
				out.WriteString(repl)
			} else {
				out.WriteString(word)
			}
			i = j - 1
		default:
			out.WriteRune(c)
		}
	}
	return out.String(), nil
}

// readQuoted reads the string starting at runes[start] and returns its
// value and the index of the closing quote.
func readQuoted(runes []rune, start int) (string, int, error) {
	quote := runes[start]
	var b strings.Builder
	for i := start + 1; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' && i+1 < len(runes) {
			i++
			switch runes[i] {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(runes[i])
			}
			continue
		}
		if c == quote {
			return b.String(), i, nil
		}
		b.WriteRune(c)
	}
	return "", 0, errUnterminatedString
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
