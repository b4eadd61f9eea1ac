package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgonek/lessonmd/attrs"
	"github.com/rgonek/lessonmd/widget"
)

type parseState int

const (
	stateProse parseState = iota
	stateTagHead
	stateDone
)

type parser struct {
	reg   *widget.Registry
	src   string
	pos   int
	state parseState
	fence *Fence

	proseStart int
	doc        Document
}

// Parse splits src into prose and widget segments in a single left-to-right
// pass. Tags inside fenced code blocks, inline code spans and HTML comments
// are left as prose. A tag naming an unregistered type, or lacking a required
// property, becomes inert prose carrying its literal text and a warning.
// Parse never fails: the segments always cover src exactly.
func Parse(reg *widget.Registry, src string) Document {
	p := &parser{
		reg:   reg,
		src:   src,
		state: stateProse,
		doc:   Document{Source: src},
	}
	for p.state != stateDone {
		switch p.state {
		case stateProse:
			p.scanProse()
		case stateTagHead:
			p.scanTag()
		}
	}
	return p.doc
}

func (p *parser) scanProse() {
	for p.pos < len(p.src) {
		if p.atLineStart() && p.scanFenceLine() {
			continue
		}

		switch ch := p.src[p.pos]; ch {
		case '\\':
			p.pos += 2
		case '`':
			p.pos = skipCodeSpan(p.src, p.pos)
		case '<':
			if strings.HasPrefix(p.src[p.pos:], "<!--") {
				end := strings.Index(p.src[p.pos+4:], "-->")
				if end < 0 {
					p.pos = len(p.src)
				} else {
					p.pos += 4 + end + 3
				}
				continue
			}
			if p.pos+1 < len(p.src) && p.src[p.pos+1] >= 'A' && p.src[p.pos+1] <= 'Z' {
				p.state = stateTagHead
				return
			}
			p.pos++
		default:
			p.pos++
		}
	}

	if p.pos > len(p.src) {
		p.pos = len(p.src)
	}
	p.flushProse(p.pos)
	p.state = stateDone
}

// scanFenceLine consumes the current line when it opens, continues or closes
// a fenced code block.
func (p *parser) scanFenceLine() bool {
	end := strings.IndexByte(p.src[p.pos:], '\n')
	next := len(p.src)
	line := p.src[p.pos:]
	if end >= 0 {
		line = p.src[p.pos : p.pos+end]
		next = p.pos + end + 1
	}

	if p.fence != nil {
		if p.fence.Closes(line) {
			p.fence = nil
		}
		p.pos = next
		return true
	}
	if f, ok := OpenFence(line); ok {
		p.fence = &f
		p.pos = next
		return true
	}
	return false
}

func (p *parser) atLineStart() bool {
	return p.pos == 0 || p.src[p.pos-1] == '\n'
}

func (p *parser) scanTag() {
	p.state = stateProse

	tag, ok := LexTag(p.src, p.pos)
	if !ok || tag.Kind != SelfClosing {
		p.pos++
		return
	}

	p.flushProse(tag.Start)
	raw := p.src[tag.Start:tag.End]
	span := Span{Start: tag.Start, End: tag.End}
	p.pos = tag.End
	p.proseStart = tag.End

	desc, ok := p.reg.Lookup(tag.Name)
	if !ok {
		p.degrade(raw, span, Warning{
			Type:    WarningUnregisteredWidget,
			Widget:  tag.Name,
			Offset:  tag.Start,
			Message: fmt.Sprintf("widget type %s is not registered", tag.Name),
		})
		return
	}

	props, issues, err := attrs.DecodeAttributes(desc, tag.Attrs)
	if err != nil {
		warnType := WarningInvalidProperty
		if errors.Is(err, attrs.ErrMissingProperty) {
			warnType = WarningMissingProperty
		}
		p.degrade(raw, span, Warning{Type: warnType, Widget: tag.Name, Offset: tag.Start, Message: err.Error()})
		return
	}

	for _, issue := range issues {
		p.doc.Warnings = append(p.doc.Warnings, Warning{
			Type:    WarningPropertyIssue,
			Widget:  tag.Name,
			Offset:  tag.Start,
			Message: fmt.Sprintf("%s: %s", issue.Property, issue.Message),
		})
	}
	p.doc.Segments = append(p.doc.Segments, &Widget{Type: tag.Name, Props: props, Source: raw, Span: span})
}

func (p *parser) degrade(raw string, span Span, warn Warning) {
	p.doc.Warnings = append(p.doc.Warnings, warn)
	p.doc.Segments = append(p.doc.Segments, &Prose{Text: raw, Span: span, Inert: true, Reason: warn.Type})
}

func (p *parser) flushProse(end int) {
	if end <= p.proseStart {
		return
	}
	p.doc.Segments = append(p.doc.Segments, &Prose{
		Text: p.src[p.proseStart:end],
		Span: Span{Start: p.proseStart, End: end},
	})
	p.proseStart = end
}

// skipCodeSpan returns the index after the inline code span opening at
// src[i], or after the backtick run when no closing run of the same length
// occurs before a blank line.
func skipCodeSpan(src string, i int) int {
	n := runLength(src[i:], '`')
	j := i + n
	for j < len(src) {
		switch src[j] {
		case '`':
			m := runLength(src[j:], '`')
			if m == n {
				return j + m
			}
			j += m
		case '\n':
			if blankLineAhead(src, j+1) {
				return i + n
			}
			j++
		default:
			j++
		}
	}
	return i + n
}

func blankLineAhead(src string, i int) bool {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r':
			i++
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}
