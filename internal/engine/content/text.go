package content

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// GraphemeLen returns the number of grapheme clusters in s.
func GraphemeLen(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// SplitAt splits s after the first k grapheme clusters.
// Concatenating the two halves always reproduces s.
func SplitAt(s string, k int) (string, string) {
	if k <= 0 {
		return "", s
	}
	rest := s
	state := -1
	consumed := 0
	for i := 0; i < k && rest != ""; i++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		consumed += len(cluster)
	}
	return s[:consumed], s[consumed:]
}

// SplitMidpoint splits s at floor(len/2) grapheme clusters, so the halves
// have lengths floor(len/2) and len-floor(len/2).
func SplitMidpoint(s string) (string, string) {
	return SplitAt(s, GraphemeLen(s)/2)
}

// StripMarkup returns the text of an HTML fragment with every tag replaced
// by a single space.
func StripMarkup(fragment string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			sb.WriteByte(' ')
		}
	}
}

// WordCount counts the whitespace-delimited words in an HTML fragment.
// Empty or markup-only content has zero words.
func WordCount(fragment string) int {
	return len(strings.Fields(StripMarkup(fragment)))
}

// ReplaceText replaces every occurrence of find with replace inside the
// text runs of nodes and returns the number of replacements. Matching is
// done on NFC-normalized text; element markup is never touched.
func ReplaceText(nodes []*Node, find, replace string) int {
	if find == "" {
		return 0
	}
	find = norm.NFC.String(find)
	total := 0
	for _, n := range nodes {
		if n.Kind != KindText {
			continue
		}
		text := norm.NFC.String(n.Text)
		count := strings.Count(text, find)
		if count == 0 {
			continue
		}
		n.Text = strings.ReplaceAll(text, find, replace)
		total += count
	}
	return total
}
