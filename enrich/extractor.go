package enrich

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxExcerptLen = 600
	minExcerptLen = 30

	maxParagraphScan = 8
	maxParagraphKeep = 5
	maxBlockScan     = 10
	maxBlockKeep     = 3
)

// Selectors that usually wrap body text, most specific first. The first
// one yielding at least two qualifying paragraphs wins.
var paragraphSelectors = []string{"article p", "main p", ".content p", "p"}

var whitespaceRE = regexp.MustCompile(`\s+`)

// ExtractText pulls a bounded plain-text excerpt out of raw HTML. An
// empty return means no usable content was found; callers must treat it
// as a terminal failure for that URL, not an empty-but-valid result.
func ExtractText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	for _, selector := range paragraphSelectors {
		nodes := doc.Find(selector)
		if nodes.Length() < 2 {
			continue
		}
		texts := make([]string, 0, maxParagraphKeep)
		nodes.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= maxParagraphScan || len(texts) >= maxParagraphKeep {
				return false
			}
			text := strings.TrimSpace(s.Text())
			if n := len(text); n > 20 && n < 300 {
				texts = append(texts, text)
			}
			return true
		})
		if len(texts) >= 2 {
			return joinExcerpt(texts)
		}
	}

	// Generic block elements as a last resort.
	texts := make([]string, 0, maxBlockKeep)
	doc.Find("div").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxBlockScan || len(texts) >= maxBlockKeep {
			return false
		}
		text := strings.TrimSpace(s.Text())
		if n := len(text); n > 40 && n < 400 {
			texts = append(texts, text)
		}
		return true
	})
	if len(texts) == 0 {
		return ""
	}
	return joinExcerpt(texts)
}

func joinExcerpt(texts []string) string {
	joined := html.UnescapeString(strings.Join(texts, " "))
	joined = whitespaceRE.ReplaceAllString(joined, " ")
	if runes := []rune(joined); len(runes) > maxExcerptLen {
		joined = string(runes[:maxExcerptLen])
	}
	if len(joined) < minExcerptLen {
		return ""
	}
	return joined
}
