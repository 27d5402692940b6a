package common

import "strings"

var markdownEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
)

// EscapeMarkdown escapes the characters Discord would interpret as formatting in embed fields
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
