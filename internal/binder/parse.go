package binder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/types"
)

// listItem matches "- [Title](target)" with any list bullet.
var listItem = regexp.MustCompile(`^([ \t]*)[-*+][ \t]+\[([^\]]*)\]\(([^)]*)\)[ \t]*$`)

// Parse reads binder content. Lines inside the managed block that are not
// list links are ignored. Content without a managed block is parsed whole.
func Parse(content string) (*Binder, error) {
	b := &Binder{}
	body := content

	if begin := strings.Index(content, BeginMarker); begin >= 0 {
		rest := content[begin+len(BeginMarker):]
		end := strings.Index(rest, EndMarker)
		if end < 0 {
			return nil, errors.NewFormatError(errors.ErrCodeBinderInvalid,
				"binder begin marker has no matching end marker", nil)
		}

		b.managed = true
		b.prefix = content[:begin]
		b.suffix = rest[end+len(EndMarker):]
		body = rest[:end]
	}

	items, err := parseItems(body, strings.Count(b.prefix, "\n"))
	if err != nil {
		return nil, err
	}
	b.Items = items

	return b, nil
}

type stackEntry struct {
	indent int
	item   *Item
}

func parseItems(body string, offset int) ([]*Item, error) {
	var (
		roots []*Item
		stack []stackEntry
		seen  = make(map[types.NodeID]int)
	)

	for n, line := range strings.Split(body, "\n") {
		lineNo := offset + n + 1
		m := listItem.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}

		item := &Item{Title: strings.TrimSpace(m[2])}

		id, err := nodeIDFromLink(m[3])
		if err != nil {
			return nil, errors.WrapFormat(err, errors.ErrCodeBinderInvalid,
				fmt.Sprintf("invalid link %q", m[3]), FileName).
				WithLocation(FileName, lineNo)
		}
		if !id.IsZero() {
			if first, dup := seen[id]; dup {
				return nil, errors.NewFormatError(errors.ErrCodeBinderInvalid,
					fmt.Sprintf("node %s already listed on line %d", id, first), nil).
					WithLocation(FileName, lineNo).
					WithNode(id.String())
			}
			seen[id] = lineNo
		}
		item.NodeID = id

		indent := indentWidth(m[1])
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, item)
		} else {
			parent := stack[len(stack)-1].item
			parent.Children = append(parent.Children, item)
		}
		stack = append(stack, stackEntry{indent: indent, item: item})
	}

	return roots, nil
}

// indentWidth counts a tab as one two-space level.
func indentWidth(ws string) int {
	width := 0
	for _, r := range ws {
		if r == '\t' {
			width += 2
		} else {
			width++
		}
	}
	return width
}

func nodeIDFromLink(link string) (types.NodeID, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", nil
	}
	return types.ParseNodeID(strings.TrimSuffix(link, ".md"))
}

// Render writes the binder back out, replacing only the managed block.
func (b *Binder) Render() string {
	var sb strings.Builder

	if b.managed {
		sb.WriteString(b.prefix)
	} else {
		sb.WriteString("# Binder\n\n")
	}

	sb.WriteString(BeginMarker)
	sb.WriteString("\n")
	for _, item := range b.Items {
		renderItem(&sb, item, 0)
	}
	sb.WriteString(EndMarker)

	if b.managed {
		sb.WriteString(b.suffix)
	} else {
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderItem(sb *strings.Builder, item *Item, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- [")
	sb.WriteString(item.Title)
	sb.WriteString("](")
	if !item.IsPlaceholder() {
		sb.WriteString(item.NodeID.DraftFile())
	}
	sb.WriteString(")\n")

	for _, child := range item.Children {
		renderItem(sb, child, depth+1)
	}
}
