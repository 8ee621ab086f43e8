package filesource

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// summaryEngine renders section bodies into HTML summaries. The engine is
// stateless, so a single shared instance serves every parse. Raw HTML
// passthrough stays disabled; summaries end up inside rendered navigation
// fragments.
var summaryEngine = goldmark.New(
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.TaskList,
	),
)

func renderSummaryHTML(markdown []byte) (string, error) {
	var buf bytes.Buffer
	if err := summaryEngine.Convert(markdown, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
