// Package pathinfo decomposes request paths of the form
// /content/site/page.sel1.sel2.html/suffix into the addressed resource
// path, selector tokens, extension, and suffix.
package pathinfo

import "strings"

// PathInfo holds the decomposed parts of a request path.
type PathInfo struct {
	ResourcePath   string
	SelectorString string
	Extension      string
	Suffix         string
}

// Parse splits a request path at its first dot. Everything before that
// dot is the resource path, the last dot-separated token of the segment
// is the extension, the tokens between are selectors, and any trailing
// segments form the suffix.
//
// The first dot wins even when it sits in a parent segment: parsing
// /content/my.site/page.html yields the resource path /content/my.
// Telling such a dot apart from a selector split would take repository
// lookups, so addressable content paths must keep their parent segments
// dot-free. Splitting on the last dotted segment instead would misread
// dotted suffixes like /content/page.html/icons/x.js.
func Parse(path string) PathInfo {
	info := PathInfo{ResourcePath: path}

	dot := strings.Index(path, ".")
	if dot < 0 {
		return info
	}
	info.ResourcePath = path[:dot]

	rest := path[dot+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		info.Suffix = rest[slash:]
		rest = rest[:slash]
	}

	if last := strings.LastIndex(rest, "."); last >= 0 {
		info.SelectorString = rest[:last]
		info.Extension = rest[last+1:]
	} else {
		info.Extension = rest
	}
	return info
}

// Selectors returns the individual selector tokens. Empty tokens produced
// by leading, trailing, or doubled dots are dropped.
func (p PathInfo) Selectors() []string {
	if p.SelectorString == "" {
		return nil
	}
	parts := strings.Split(p.SelectorString, ".")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HasSelector reports whether the selector string contains the given
// token, matched as a whole dot-delimited token rather than a substring.
func (p PathInfo) HasSelector(sel string) bool {
	for _, s := range p.Selectors() {
		if s == sel {
			return true
		}
	}
	return false
}

// WithSelector returns a copy of the path info with the given selector
// appended, unless it is already present.
func (p PathInfo) WithSelector(sel string) PathInfo {
	if p.HasSelector(sel) {
		return p
	}
	selectors := append(p.Selectors(), sel)
	p.SelectorString = strings.Join(selectors, ".")
	return p
}

// WithoutSelector returns a copy of the path info with every occurrence
// of the given selector token removed.
func (p PathInfo) WithoutSelector(sel string) PathInfo {
	if !p.HasSelector(sel) {
		return p
	}
	kept := make([]string, 0, len(p.Selectors()))
	for _, s := range p.Selectors() {
		if s != sel {
			kept = append(kept, s)
		}
	}
	p.SelectorString = strings.Join(kept, ".")
	return p
}

// String reassembles the path info into a request path.
func (p PathInfo) String() string {
	var b strings.Builder
	b.WriteString(p.ResourcePath)
	for _, s := range p.Selectors() {
		b.WriteString(".")
		b.WriteString(s)
	}
	if p.Extension != "" {
		b.WriteString(".")
		b.WriteString(p.Extension)
	}
	b.WriteString(p.Suffix)
	return b.String()
}
