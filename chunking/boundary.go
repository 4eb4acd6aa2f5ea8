package chunking

import (
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownBoundaries extracts structural break offsets from markdown produced
// by the extraction collaborator. Each heading and paragraph start becomes a
// candidate cut point for the segmenter.
func MarkdownBoundaries(source string) []int {
	src := []byte(source)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	seen := map[int]bool{}
	var offsets []int
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph, ast.KindListItem, ast.KindBlockquote:
			if off, ok := blockStart(n); ok && !seen[off] {
				seen[off] = true
				offsets = append(offsets, off)
			}
		}
		return ast.WalkContinue, nil
	})
	sort.Ints(offsets)
	return offsets
}

func blockStart(n ast.Node) (int, bool) {
	if n.Type() != ast.TypeBlock {
		return 0, false
	}
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0, false
	}
	return lines.At(0).Start, true
}
