package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeTool writes an executable shell script named name into dir.
func FakeTool(tb testing.TB, dir, name, body string) string {
	tb.Helper()
	require.NoError(tb, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + strings.TrimLeft(body, "\n")
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	require.NoError(tb, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// compactFrom emits shell that replaces "$dst" with "$compact/<basename of
// $src>" when such a file exists. $src and $dst must be set by the caller.
func compactFrom(compact string) string {
	return fmt.Sprintf(`c=%q/"$(basename "$src")"
if [ -f "$c" ]; then cp "$c" "$dst"; fi
`, compact)
}

// FakeTools installs a fake for every optimizer into dir. Each fake
// honours the real tool's argument layout. PNG, JPEG and GIF fakes copy
// the compact file of the same basename from compact when present and
// otherwise leave the input size unchanged. The WebP encoders write a
// short placeholder that is always smaller than any real image; the
// gif2webp fake fails unless its input is a GIF.
func FakeTools(tb testing.TB, dir, compact string) {
	tb.Helper()

	inPlace := `for src; do :; done
dst="$src"
` + compactFrom(compact) + "exit 0\n"

	// advpng -z -4 -q <file>, optipng -o7 -quiet <file>
	FakeTool(tb, dir, "advpng", inPlace)
	FakeTool(tb, dir, "optipng", inPlace)

	// pngout -y -q <in> <out>
	FakeTool(tb, dir, "pngout", `src="$3"; dst="$4"
cp "$src" "$dst"
`+compactFrom(compact))

	// gifsicle -O3 --careful -o <out> <in>
	FakeTool(tb, dir, "gifsicle", `dst="$4"; src="$5"
cp "$src" "$dst"
`+compactFrom(compact))

	// jpegtran -copy none -optimize -outfile <out> <in>
	FakeTool(tb, dir, "jpegtran", `dst="$5"; src="$6"
cp "$src" "$dst"
`+compactFrom(compact))

	// jfifremove < in > out
	FakeTool(tb, dir, "jfifremove", "cat\n")

	// cwebp -quiet -lossless -m 6 <in> -o <out>
	FakeTool(tb, dir, "cwebp", `[ -f "$5" ] || exit 2
printf 'RIFF\000\000\000\000WEBPVP8L' > "$7"
`)

	// gif2webp -quiet -m 6 <in> -o <out>; rejects anything but a GIF.
	FakeTool(tb, dir, "gif2webp", `[ -f "$4" ] || exit 2
[ "$(head -c 3 "$4")" = "GIF" ] || { echo "not a gif" >&2; exit 3; }
printf 'RIFF\000\000\000\000WEBPVP8X' > "$6"
`)
}

// FailingTool installs a fake that writes msg to stderr and exits code.
func FailingTool(tb testing.TB, dir, name, msg string, code int) string {
	tb.Helper()
	return FakeTool(tb, dir, name, fmt.Sprintf("echo %q >&2\nexit %d\n", msg, code))
}

// SleepingTool installs a fake that sleeps for secs seconds.
func SleepingTool(tb testing.TB, dir, name string, secs int) string {
	tb.Helper()
	return FakeTool(tb, dir, name, fmt.Sprintf("exec sleep %d\n", secs))
}
