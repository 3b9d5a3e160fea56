package amp

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/pathinfo"
)

// PageLink computes the alternate-representation link a rendered document
// should carry. The AMP variant points back at the canonical page; a
// paired page advertises its amphtml variant. AMP-only and no-AMP pages
// need no link because only one rendering exists.
func PageLink(info pathinfo.PathInfo, mode string) (rel, href string, ok bool) {
	switch {
	case info.HasSelector(Selector):
		return "canonical", info.WithoutSelector(Selector).String(), true
	case mode == models.AmpModePaired:
		return "amphtml", info.WithSelector(Selector).String(), true
	}
	return "", "", false
}

// InjectLink parses the document and appends a <link rel href> element to
// its head. Documents without a head come back from the parser with one
// synthesized, so the link always finds a home.
func InjectLink(doc []byte, rel, href string) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	head := findElement(root, atom.Head)
	if head == nil {
		return nil, fmt.Errorf("document has no head element")
	}
	head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     "link",
		Attr: []html.Attribute{
			{Key: "rel", Val: rel},
			{Key: "href", Val: href},
		},
	})

	var out bytes.Buffer
	if err := html.Render(&out, root); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return out.Bytes(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
