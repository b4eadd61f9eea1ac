package render

import (
	"fmt"
	"regexp"

	"github.com/alecthomas/chroma/v2/styles"
)

// Sanitize selects the HTML policy applied to rendered prose.
type Sanitize string

const (
	SanitizeUGC  Sanitize = "ugc"
	SanitizeNone Sanitize = "none"
)

var classNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Config configures rendering.
type Config struct {
	Highlight      bool     `json:"highlight,omitempty" yaml:"highlight"`
	HighlightStyle string   `json:"highlightStyle,omitempty" yaml:"highlightStyle"`
	Sanitize       Sanitize `json:"sanitize,omitempty" yaml:"sanitize"`
	HeadingOffset  int      `json:"headingOffset,omitempty" yaml:"headingOffset"`
	// EditAction is the URL authoring forms post widget updates and deletes to.
	EditAction  string `json:"editAction,omitempty" yaml:"editAction"`
	WidgetClass string `json:"widgetClass,omitempty" yaml:"widgetClass"`
}

func (c Config) applyDefaults() Config {
	if c.HighlightStyle == "" {
		c.HighlightStyle = "github"
	}
	if c.Sanitize == "" {
		c.Sanitize = SanitizeUGC
	}
	if c.WidgetClass == "" {
		c.WidgetClass = "lesson-widget"
	}
	return c
}

func (c Config) clone() Config {
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.Sanitize != SanitizeUGC && c.Sanitize != SanitizeNone {
		return fmt.Errorf("invalid sanitize %q", c.Sanitize)
	}

	if _, ok := styles.Registry[c.HighlightStyle]; !ok {
		return fmt.Errorf("unknown highlightStyle %q", c.HighlightStyle)
	}

	if c.HeadingOffset < -5 || c.HeadingOffset > 5 {
		return fmt.Errorf("headingOffset must be between -5 and 5, got %d", c.HeadingOffset)
	}

	if !classNameRe.MatchString(c.WidgetClass) {
		return fmt.Errorf("invalid widgetClass %q", c.WidgetClass)
	}

	return nil
}
