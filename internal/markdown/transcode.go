// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown converts lakebook HTML bodies to Markdown.
//
// The conversion is a fixed set of tag rewrites, not a general HTML-to-
// Markdown renderer: paragraphs and line breaks become blank lines, strong
// and em become ** and *, images and links become their Markdown syntax,
// and every other tag (headings, lists, tables, code blocks) passes through
// as raw HTML. The pass-through is a property of the lakebook format's
// original converter and is kept intact.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns   = regexp.MustCompile(` {2,}`)
)

// Transcode rewrites an HTML fragment as Markdown.
//
// Rewrites happen in a fixed order: emphasis flattens any markup it
// contains, so an image or link nested inside <strong> is absorbed as plain
// text rather than converted. Malformed input is parsed permissively;
// unknown and unclosed tags are tolerated. After serialization, runs of
// three or more newlines collapse to two and runs of two or more spaces
// collapse to one, and the result is trimmed.
func Transcode(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	// Force a paragraph break after every paragraph and line break.
	doc.Find("p,br").Each(func(_ int, s *goquery.Selection) {
		insertTextAfter(s, "\n\n")
	})

	doc.Find("strong").Each(func(_ int, s *goquery.Selection) {
		replaceWithText(s, "**"+s.Text()+"**")
	})
	doc.Find("em").Each(func(_ int, s *goquery.Selection) {
		replaceWithText(s, "*"+s.Text()+"*")
	})
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt := s.AttrOr("alt", "image")
		src := s.AttrOr("src", "")
		replaceWithText(s, "!["+alt+"]("+src+")")
	})
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		replaceWithText(s, "["+s.Text()+"]("+href+")")
	})

	// Handled container tags are unwrapped so only their converted content
	// remains; unhandled tags serialize below as raw HTML.
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		unwrap(s)
	})
	doc.Find("br").Remove()

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serializing document: %w", err)
	}

	out = newlineRuns.ReplaceAllString(out, "\n\n")
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out), nil
}

// insertTextAfter places a text node immediately after each node of the
// selection.
func insertTextAfter(s *goquery.Selection, text string) {
	for _, n := range s.Nodes {
		if n.Parent == nil {
			continue
		}
		n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n.NextSibling)
	}
}

// replaceWithText substitutes each node of the selection with a text node.
func replaceWithText(s *goquery.Selection, text string) {
	for _, n := range s.Nodes {
		parent := n.Parent
		if parent == nil {
			continue
		}
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
		parent.RemoveChild(n)
	}
}

// unwrap lifts each node's children into its place and drops the tag itself.
func unwrap(s *goquery.Selection) {
	for _, n := range s.Nodes {
		parent := n.Parent
		if parent == nil {
			continue
		}
		for child := n.FirstChild; child != nil; {
			next := child.NextSibling
			n.RemoveChild(child)
			parent.InsertBefore(child, n)
			child = next
		}
		parent.RemoveChild(n)
	}
}
