package parser

import (
	"regexp"
	"strings"
)

var (
	styleBlockRe  = regexp.MustCompile(`(?s)<style[^>]*>.*?</style>`)
	scriptBlockRe = regexp.MustCompile(`(?s)<script[^>]*>.*?</script>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// breaks are applied in order before tags are stripped
var breaks = []struct{ from, to string }{
	{"<br>", "\n"},
	{"<br/>", "\n"},
	{"<br />", "\n"},
	{"</p>", "\n\n"},
	{"</div>", "\n\n"},
	{"</h1>", "\n\n"},
	{"</h2>", "\n\n"},
	{"</h3>", "\n\n"},
	{"</h4>", "\n\n"},
	{"</h5>", "\n\n"},
	{"</h6>", "\n\n"},
}

// entities are decoded in order; &amp; must stay last so that "&amp;lt;"
// becomes "&lt;" and not "<"
var entities = []struct{ from, to string }{
	{"&nbsp;", " "},
	{"&quot;", `"`},
	{"&apos;", "'"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
}

// CleanHTML converts an XHTML fragment into plain text with paragraph breaks
func CleanHTML(html string) string {
	text := html
	for _, b := range breaks {
		text = strings.ReplaceAll(text, b.from, b.to)
	}

	text = styleBlockRe.ReplaceAllString(text, "")
	text = scriptBlockRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")
	text = decodeEntities(text)
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// CleanXML strips inline tags and entities from an FB2 text fragment
func CleanXML(xml string) string {
	text := tagRe.ReplaceAllString(xml, "")
	return strings.TrimSpace(decodeEntities(text))
}

func decodeEntities(text string) string {
	for _, e := range entities {
		text = strings.ReplaceAll(text, e.from, e.to)
	}
	return text
}
