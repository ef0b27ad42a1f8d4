package display

import (
	"io"

	"github.com/fatih/color"
)

var bannerColor = color.New(color.FgHiMagenta, color.Bold)

const banner = ` ____  _      __  __           _
|  _ \(_)_  _|  \/  | __ _ ___| |_ ___ _ __
| |_) | \ \/ / |\/| |/ _` + "`" + ` / __| __/ _ \ '__|
|  __/| |>  <| |  | | (_| \__ \ ||  __/ |
|_|   |_/_/\_\_|  |_|\__,_|___/\__\___|_|
`

// PrintBanner writes the ASCII art banner to w, in magenta when colors are
// enabled.
func PrintBanner(w io.Writer) {
	bannerColor.Fprint(w, banner)
}
