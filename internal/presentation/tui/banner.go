package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`        _             _    `,
	`   __ _| |_  _ _ __ | |_  `,
	`  / _' | | || | '_ \| ' \ `,
	`  \__, |_|\_, | .__/|_||_|`,
	`  |___/   |__/|_|         `,
}

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}

// PrintBanner writes the glyph banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).EnvColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i%len(bannerColors)])))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
