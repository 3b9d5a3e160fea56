package pathinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		path string
		want PathInfo
	}{
		{
			name: "plain resource path",
			path: "/content/site/page",
			want: PathInfo{ResourcePath: "/content/site/page"},
		},
		{
			name: "extension only",
			path: "/content/site/page.html",
			want: PathInfo{ResourcePath: "/content/site/page", Extension: "html"},
		},
		{
			name: "single selector",
			path: "/content/site/page.amp.html",
			want: PathInfo{ResourcePath: "/content/site/page", SelectorString: "amp", Extension: "html"},
		},
		{
			name: "multiple selectors",
			path: "/content/site/page.foo.bar.html",
			want: PathInfo{ResourcePath: "/content/site/page", SelectorString: "foo.bar", Extension: "html"},
		},
		{
			name: "suffix",
			path: "/content/site/page.amp.html/a/b.css",
			want: PathInfo{ResourcePath: "/content/site/page", SelectorString: "amp", Extension: "html", Suffix: "/a/b.css"},
		},
		{
			// A dot in a parent segment starts the decomposition there;
			// content paths are expected to keep parent segments dot-free.
			name: "dotted parent segment",
			path: "/content/my.site/page.html",
			want: PathInfo{ResourcePath: "/content/my", Extension: "site", Suffix: "/page.html"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.path))
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, path := range []string{
		"/content/site/page",
		"/content/site/page.html",
		"/content/site/page.amp.html",
		"/content/site/page.foo.bar.html/suffix/x.js",
	} {
		assert.Equal(t, path, Parse(path).String())
	}
}

func TestHasSelector(t *testing.T) {
	cases := []struct {
		selectorString string
		want           bool
	}{
		{"amp", true},
		{".amp", true},
		{"amp.", true},
		{"foo.amp", true},
		{"amp.foo", true},
		{"preamp", false},
		{"amplify", false},
		{"foo.preamp", false},
		{"", false},
	}
	for _, tc := range cases {
		info := PathInfo{SelectorString: tc.selectorString}
		assert.Equal(t, tc.want, info.HasSelector("amp"), "selector string %q", tc.selectorString)
	}
}

func TestWithSelector(t *testing.T) {
	info := Parse("/content/site/page.html")
	forwarded := info.WithSelector("amp")
	assert.Equal(t, "/content/site/page.amp.html", forwarded.String())

	// Already present: no duplicate token.
	again := forwarded.WithSelector("amp")
	assert.Equal(t, forwarded.String(), again.String())

	// Messy selector strings stay normalized on reassembly.
	messy := PathInfo{ResourcePath: "/p", SelectorString: ".amp", Extension: "html"}
	assert.Equal(t, "/p.amp.html", messy.WithSelector("amp").String())
}

func TestWithoutSelector(t *testing.T) {
	info := Parse("/content/site/page.foo.amp.html")
	assert.Equal(t, "/content/site/page.foo.html", info.WithoutSelector("amp").String())

	// Absent selector leaves the path untouched.
	assert.Equal(t, info, info.WithoutSelector("bar"))

	only := Parse("/content/site/page.amp.html")
	assert.Equal(t, "/content/site/page.html", only.WithoutSelector("amp").String())
}
