package content

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EmptyPageHTML is the serialized form of a page with no content.
const EmptyPageHTML = "<br>"

// fragmentContext is the element page content is parsed inside of.
var fragmentContext = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}

// textEscaper escapes text runs. Quotes are left alone so that loading
// and saving a page keeps its text byte for byte.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Parse parses an HTML fragment into top-level nodes allocated from a.
// A fragment consisting of a single <br> (or nothing) yields no nodes.
func Parse(a *Arena, fragment string) ([]*Node, error) {
	parsed, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	if isEmptyFragment(parsed) {
		return nil, nil
	}

	nodes := make([]*Node, 0, len(parsed))
	for _, p := range parsed {
		switch p.Type {
		case html.TextNode:
			if p.Data == "" {
				continue
			}
			nodes = append(nodes, a.NewText(p.Data))
		case html.ElementNode:
			inner, err := renderChildren(p)
			if err != nil {
				return nil, err
			}
			n := a.NewElement(p.Data, nil, inner)
			for _, attr := range p.Attr {
				switch attr.Key {
				case "width":
					if v, ok := parsePixels(attr.Val); ok {
						n.Width = v
						continue
					}
				case "height":
					if v, ok := parsePixels(attr.Val); ok {
						n.Height = v
						continue
					}
				case "style":
					rest, w, h := extractStyleSize(attr.Val)
					if w > 0 {
						n.Width = w
					}
					if h > 0 {
						n.Height = h
					}
					if rest == "" {
						continue
					}
					attr.Val = rest
				}
				n.Attrs = append(n.Attrs, html.Attribute{Key: attr.Key, Val: attr.Val})
			}
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// Render serializes nodes as an HTML fragment.
func Render(nodes []*Node) string {
	if len(nodes) == 0 {
		return EmptyPageHTML
	}
	var sb strings.Builder
	for _, n := range nodes {
		writeNode(&sb, n)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	if n.Kind == KindText {
		sb.WriteString(EscapeText(n.Text))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	styled := false
	for _, a := range n.Attrs {
		val := a.Val
		if a.Key == "style" {
			val = withStyleSize(val, n.Width, n.Height)
			styled = true
		}
		writeAttr(sb, a.Key, val)
	}
	if !styled && (n.Width > 0 || n.Height > 0) {
		writeAttr(sb, "style", withStyleSize("", n.Width, n.Height))
	}
	sb.WriteByte('>')

	if voidElements[n.Tag] {
		return
	}
	sb.WriteString(n.Inner)
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

// EscapeText escapes s for use as HTML text content.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

func writeAttr(sb *strings.Builder, key, val string) {
	sb.WriteByte(' ')
	sb.WriteString(key)
	sb.WriteString(`="`)
	sb.WriteString(html.EscapeString(val))
	sb.WriteByte('"')
}

func renderChildren(p *html.Node) (string, error) {
	var sb strings.Builder
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("render <%s> children: %w", p.Data, err)
		}
	}
	return sb.String(), nil
}

func isEmptyFragment(parsed []*html.Node) bool {
	switch len(parsed) {
	case 0:
		return true
	case 1:
		p := parsed[0]
		return p.Type == html.ElementNode && p.DataAtom == atom.Br && len(p.Attr) == 0
	default:
		return false
	}
}

// parsePixels parses "120" or "120px".
func parsePixels(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// extractStyleSize pulls pixel width/height declarations out of a style
// attribute and returns the remaining declarations.
func extractStyleSize(style string) (rest string, width, height int) {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		key, val, ok := strings.Cut(decl, ":")
		if ok {
			key = strings.ToLower(strings.TrimSpace(key))
			val = strings.TrimSpace(val)
			if strings.HasSuffix(val, "px") {
				if v, ok := parsePixels(val); ok {
					switch key {
					case "width":
						width = v
						continue
					case "height":
						height = v
						continue
					}
				}
			}
		}
		kept = append(kept, decl)
	}
	return strings.Join(kept, "; "), width, height
}

// withStyleSize replaces width/height declarations in style with the given
// pixel size. Zero leaves the existing declaration alone.
func withStyleSize(style string, width, height int) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		key, _, _ := strings.Cut(decl, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		if (key == "width" && width > 0) || (key == "height" && height > 0) {
			continue
		}
		kept = append(kept, decl)
	}
	if width > 0 {
		kept = append(kept, "width: "+strconv.Itoa(width)+"px")
	}
	if height > 0 {
		kept = append(kept, "height: "+strconv.Itoa(height)+"px")
	}
	return strings.Join(kept, "; ")
}
