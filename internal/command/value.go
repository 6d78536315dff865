package command

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/net/html"
)

// namedColors covers the basic CSS keywords a color picker may hand over.
var namedColors = map[string]string{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"orange":  "#ffa500",
}

// NormalizeColor converts a color value to lowercase "#rrggbb".
//
// Accepted forms are "#rgb", "#rrggbb", "rgb(r, g, b)" and the basic CSS
// color keywords.
func NormalizeColor(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if hex, ok := namedColors[v]; ok {
		return hex, nil
	}

	switch {
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		parts := strings.Split(v[4:len(v)-1], ",")
		if len(parts) != 3 {
			break
		}
		var rgb [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return "", fmt.Errorf("%w: color %q", ErrInvalidValue, value)
			}
			rgb[i] = uint8(n)
		}
		return colorful.Color{
			R: float64(rgb[0]) / 255,
			G: float64(rgb[1]) / 255,
			B: float64(rgb[2]) / 255,
		}.Hex(), nil

	case strings.HasPrefix(v, "#") && len(v) == 4:
		v = "#" + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2) + strings.Repeat(v[3:4], 2)
		fallthrough

	case strings.HasPrefix(v, "#") && len(v) == 7:
		c, err := colorful.Hex(v)
		if err != nil {
			return "", fmt.Errorf("%w: color %q", ErrInvalidValue, value)
		}
		return c.Hex(), nil
	}
	return "", fmt.Errorf("%w: color %q", ErrInvalidValue, value)
}

// NormalizeValue validates and canonicalizes the value for a command.
// Commands that take no value get their value passed through unchanged.
func NormalizeValue(name, value string) (string, error) {
	switch name {
	case ForeColor, HiliteColor:
		return NormalizeColor(value)

	case FontSize:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 || n > 7 {
			return "", fmt.Errorf("%w: font size %q", ErrInvalidValue, value)
		}
		return strconv.Itoa(n), nil

	case FontName:
		v := strings.TrimSpace(value)
		if v == "" {
			return "", fmt.Errorf("%w: empty font name", ErrInvalidValue)
		}
		return v, nil

	case CreateLink:
		return normalizeLink(value)
	}
	return value, nil
}

func normalizeLink(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: empty link", ErrInvalidValue)
	}
	u, err := url.Parse(v)
	if err != nil {
		return "", fmt.Errorf("%w: link %q: %v", ErrInvalidValue, value, err)
	}
	switch u.Scheme {
	case "":
		u, err = url.Parse("https://" + v)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("%w: link %q", ErrInvalidValue, value)
		}
	case "http", "https", "mailto":
	default:
		return "", fmt.Errorf("%w: link scheme %q", ErrInvalidValue, u.Scheme)
	}
	return u.String(), nil
}

// Inline describes the element an inline formatting command wraps the
// selected text in.
type Inline struct {
	Tag   string
	Attrs []html.Attribute
}

// InlineFor returns the wrapping element for an inline command with an
// already normalized value. The result is false for commands that do not
// wrap text.
func InlineFor(name, value string) (Inline, bool) {
	switch name {
	case Bold:
		return Inline{Tag: "b"}, true
	case Italic:
		return Inline{Tag: "i"}, true
	case Underline:
		return Inline{Tag: "u"}, true
	case StrikeThrough:
		return Inline{Tag: "s"}, true
	case Subscript:
		return Inline{Tag: "sub"}, true
	case Superscript:
		return Inline{Tag: "sup"}, true
	case ForeColor:
		return styled("color: " + value), true
	case HiliteColor:
		return styled("background-color: " + value), true
	case FontName:
		return styled("font-family: " + value), true
	case FontSize:
		return Inline{Tag: "font", Attrs: []html.Attribute{{Key: "size", Val: value}}}, true
	case CreateLink:
		return Inline{Tag: "a", Attrs: []html.Attribute{{Key: "href", Val: value}}}, true
	}
	return Inline{}, false
}

func styled(style string) Inline {
	return Inline{Tag: "span", Attrs: []html.Attribute{{Key: "style", Val: style}}}
}

// formatTags are the tags RemoveFormat strips. Links survive; Unlink
// removes those.
var formatTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true,
	"s": true, "strike": true, "sub": true, "sup": true,
	"span": true, "font": true,
}

// IsFormatting returns true if tag is removed by RemoveFormat.
func IsFormatting(tag string) bool {
	return formatTags[tag]
}
