package main

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Release is a single version section of the changelog
type Release struct {
	Version string
	Date    string
	Body    string
}

// History is the parsed changelog: releases newest-first plus the
// link definitions at the bottom of the file
type History struct {
	Releases []Release
	Links    map[string]string
}

// Find returns the release for a version, ignoring any "v" prefix.
func (h *History) Find(version string) *Release {
	version = strings.TrimPrefix(version, "v")
	for i := range h.Releases {
		if strings.TrimPrefix(h.Releases[i].Version, "v") == version {
			return &h.Releases[i]
		}
	}
	return nil
}

// Latest returns the newest release that carries a date, skipping the
// Unreleased section.
func (h *History) Latest() *Release {
	for i := range h.Releases {
		if !strings.EqualFold(h.Releases[i].Version, "unreleased") {
			return &h.Releases[i]
		}
	}
	return nil
}

// section is an h2 heading with the byte offsets needed to slice out its body
type section struct {
	version string
	date    string
	start   int
	bodyAt  int
}

// ParseHistory parses a Keep a Changelog formatted markdown file.
func ParseHistory(source []byte) (*History, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	history := &History{Links: map[string]string{}}
	for _, ref := range ctx.References() {
		history.Links[string(ref.Label())] = string(ref.Destination())
	}

	var sections []section
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 2 {
			return ast.WalkContinue, nil
		}

		version, date := splitVersionHeading(headingText(heading, source))
		sec := section{version: version, date: date}
		if lines := heading.Lines(); lines.Len() > 0 {
			sec.start = lines.At(0).Start
			sec.bodyAt = lines.At(lines.Len() - 1).Stop
		}
		sections = append(sections, sec)

		return ast.WalkContinue, nil
	})

	for i, sec := range sections {
		end := len(source)
		if i+1 < len(sections) {
			end = sections[i+1].start
		}

		body := ""
		if sec.bodyAt < end {
			body = strings.TrimSpace(string(source[sec.bodyAt:end]))
		}

		history.Releases = append(history.Releases, Release{
			Version: sec.version,
			Date:    sec.date,
			Body:    body,
		})
	}

	return history, nil
}

// headingText flattens the heading's text nodes, descending into links so
// "[1.0.0] - 2024-01-15" comes out whole.
func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if textNode, ok := child.(*ast.Text); ok {
				buf.Write(textNode.Segment.Value(source))
				continue
			}
			walk(child)
		}
	}
	walk(node)
	return buf.String()
}

func splitVersionHeading(heading string) (version, date string) {
	heading = strings.TrimSpace(heading)
	heading = strings.TrimPrefix(heading, "[")

	if idx := strings.Index(heading, "]"); idx != -1 {
		version = heading[:idx]
		rest := strings.TrimSpace(heading[idx+1:])
		date = strings.TrimSpace(strings.TrimPrefix(rest, "-"))
		return version, date
	}

	if idx := strings.Index(heading, " - "); idx != -1 {
		return strings.TrimSpace(heading[:idx]), strings.TrimSpace(heading[idx+3:])
	}

	return heading, ""
}
