package strudel

import (
	"fmt"

	"github.com/strudelkit/lily2strudel/pkg/score"
)

// HTML wraps the generated pattern in a self-contained strudel-repl embed
// page. The pattern lives in the comment body of the <strudel-repl> tag,
// which is how the embed script expects its program.
func HTML(doc *score.Document, title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>%s</title>
  <script src="https://unpkg.com/@strudel/embed@latest"></script>
  <style>
    html, body { margin: 0; padding: 0; width: 100%%; height: 100%%; }
    strudel-repl { width: 100%%; height: 100%%; display: block; }
    strudel-repl iframe { width: 100%%; height: 100%%; border: none; }
  </style>
</head>
<body>
  <strudel-repl>
<!--
%s

%s
-->
  </strudel-repl>
</body>
</html>`, title, TempoConst(doc), Statements(doc))
}
