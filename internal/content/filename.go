package content

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// FileName turns a title into a file name stem. Unsafe characters become
// dashes or are dropped; letters outside ASCII are kept. Blank titles yield
// "project".
func FileName(title string) string {
	name := strings.Join(strings.Fields(fileNameReplacer.Replace(CanonicalKey(title))), " ")
	name = strings.Trim(name, " .-")
	if name == "" {
		return "project"
	}
	return name
}
