package render

import (
	"fmt"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// pageShell wraps the converted document body into a printable HTML page.
// Styling is intentionally minimal; layout is the browser's job.
const pageShell = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>旅のしおり</title>
<style>
body { font-family: "Hiragino Sans", "Noto Sans JP", sans-serif; margin: 24px; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #999; padding: 4px 8px; }
img { max-width: 100%%; }
h1 { text-align: center; }
</style>
</head>
<body>
%s
</body>
</html>
`

// HTMLPage converts the assembled Markdown document into a complete HTML
// page ready for the browser renderer. The conversion is deterministic.
func HTMLPage(doc string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML([]byte(doc), p, renderer)
	return fmt.Sprintf(pageShell, body)
}
