// Package message turns a workflow run into an ordered chat notification.
//
// Build is a pure function: it performs no I/O, keeps no state between calls
// and never mutates its inputs. The produced blocks follow the Slack Block Kit
// layout, which every notifier in this module can consume.
package message

import "strings"

// BlockType identifies how a Block is rendered.
type BlockType string

const (
	BlockHeader  BlockType = "header"
	BlockSection BlockType = "section"
	BlockDivider BlockType = "divider"
	BlockContext BlockType = "context"
)

// Text object types.
const (
	TextPlain    = "plain_text"
	TextMarkdown = "mrkdwn"
)

// Text is a Block Kit text object.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Block is one rendering unit of a notification.
type Block struct {
	Type     BlockType `json:"type"`
	Text     *Text     `json:"text,omitempty"`
	Elements []Text    `json:"elements,omitempty"`
}

// Header returns a header block with plain text.
func Header(text string) Block {
	return Block{Type: BlockHeader, Text: &Text{Type: TextPlain, Text: text, Emoji: true}}
}

// Section returns a section block with markdown text.
func Section(markdown string) Block {
	return Block{Type: BlockSection, Text: &Text{Type: TextMarkdown, Text: markdown}}
}

// Divider returns a divider block.
func Divider() Block {
	return Block{Type: BlockDivider}
}

// Context returns a context block with one markdown element per argument.
func Context(markdown ...string) Block {
	elems := make([]Text, 0, len(markdown))
	for _, m := range markdown {
		elems = append(elems, Text{Type: TextMarkdown, Text: m})
	}
	return Block{Type: BlockContext, Elements: elems}
}

// FallbackText flattens blocks into plain text for sinks or clients that
// cannot render blocks. Dividers become blank lines.
func FallbackText(blocks []Block) string {
	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch {
		case blk.Text != nil:
			b.WriteString(blk.Text.Text)
		case len(blk.Elements) > 0:
			parts := make([]string, 0, len(blk.Elements))
			for _, e := range blk.Elements {
				parts = append(parts, e.Text)
			}
			b.WriteString(strings.Join(parts, " "))
		}
	}
	return b.String()
}
