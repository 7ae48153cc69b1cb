package binder

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prosemark/internal/errors"
)

const frontmatterDelimiter = "---"

// Frontmatter is the YAML header of a node file. Unknown keys are kept in
// Extra so a read-modify-write cycle does not lose them.
type Frontmatter struct {
	ID       string                 `yaml:"id,omitempty"`
	Title    string                 `yaml:"title,omitempty"`
	Synopsis string                 `yaml:"synopsis,omitempty"`
	Created  string                 `yaml:"created,omitempty"`
	Updated  string                 `yaml:"updated,omitempty"`
	Extra    map[string]interface{} `yaml:",inline"`
}

// SplitFrontmatter separates a leading "---" delimited YAML block from the
// body. Content without a complete block is returned whole as the body.
func SplitFrontmatter(content string) (Frontmatter, string, error) {
	var fm Frontmatter

	first, rest, ok := cutLine(content)
	if !ok || first != frontmatterDelimiter {
		return fm, content, nil
	}

	var block []string
	for {
		line, next, more := cutLine(rest)
		if line == frontmatterDelimiter {
			if err := decodeFrontmatter(strings.Join(block, "\n"), &fm); err != nil {
				return Frontmatter{}, "", err
			}
			return fm, next, nil
		}
		if !more {
			return Frontmatter{}, content, nil
		}
		block = append(block, line)
		rest = next
	}
}

// cutLine splits off the first line, dropping its "\n" or "\r\n". more is
// false when s held no newline.
func cutLine(s string) (line, rest string, more bool) {
	line, rest, more = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, more
}

func decodeFrontmatter(block string, fm *Frontmatter) error {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return errors.NewFormatError(errors.ErrCodeFrontmatterInvalid, "invalid YAML in frontmatter", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return errors.NewFormatError(errors.ErrCodeFrontmatterInvalid,
			"frontmatter must be a YAML mapping", nil).
			WithLocation("", root.Line)
	}

	if err := root.Decode(fm); err != nil {
		return errors.NewFormatError(errors.ErrCodeFrontmatterInvalid, "decode frontmatter", err)
	}
	return nil
}

// JoinFrontmatter renders fm as a YAML header followed by body. An empty
// header is omitted.
func JoinFrontmatter(fm Frontmatter, body string) (string, error) {
	out, err := yaml.Marshal(&fm)
	if err != nil {
		return "", errors.NewFormatError(errors.ErrCodeFrontmatterInvalid, "encode frontmatter", err)
	}

	header := strings.TrimSpace(string(out))
	if header == "{}" || header == "" {
		return body, nil
	}

	return frontmatterDelimiter + "\n" + header + "\n" + frontmatterDelimiter + "\n" + body, nil
}
