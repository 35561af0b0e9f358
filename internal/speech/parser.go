// Package speech runs the synthesis pipeline: strip markup, resolve the
// voice, consult the cache, call the provider on a miss, then play.
package speech

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var multiSpace = regexp.MustCompile(`\s+`)

// StripMarkup flattens a markdown reply into speakable plain text. Code
// blocks are replaced with a short spoken marker, link text is kept
// without its URL, and emphasis markers are dropped.
func StripMarkup(markdown string) string {
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var buf strings.Builder
	walk(doc, reader.Source(), &buf)

	out := multiSpace.ReplaceAllString(buf.String(), " ")
	return strings.TrimSpace(out)
}

func walk(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		buf.WriteString("Code block omitted. ")
		return

	case *ast.HTMLBlock:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}

	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return

	case *ast.Heading:
		walkChildren(n, source, buf)
		buf.WriteString(". ")
		return

	case *ast.Paragraph:
		walkChildren(n, source, buf)
		endSentence(buf)
		return

	case *ast.ListItem:
		walkChildren(n, source, buf)
		endSentence(buf)
		return

	case *ast.Link, *ast.Emphasis:
		walkChildren(node, source, buf)
		return

	case *ast.Image:
		// Images have nothing to speak.
		return

	case *ast.ThematicBreak:
		buf.WriteString(". ")
		return
	}

	walkChildren(node, source, buf)
}

func walkChildren(node ast.Node, source []byte, buf *strings.Builder) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, source, buf)
	}
}

// endSentence appends a period unless the text already ends with
// terminal punctuation.
func endSentence(buf *strings.Builder) {
	content := strings.TrimRight(buf.String(), " ")
	if content == "" {
		return
	}
	switch content[len(content)-1] {
	case '.', '!', '?', ':':
		buf.WriteByte(' ')
	default:
		buf.WriteString(". ")
	}
}
