package tui

import (
	"fmt"
	"io"
	"strings"
)

// PrintBanner outputs the ASCII art banner with the running version.
func PrintBanner(w io.Writer, version string) {
	out := NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`                          ___     _       _    `, "#38bdf8"},
		{`   __ _ ____  _ _ _  __  / __|___| |_ ___| |_  `, "#22d3ee"},
		{`  / _' (_-< || | ' \/ _||  _/ -_)  _/ _|| ' \ `, "#2dd4bf"},
		{`  \__,_/__/\_, |_||_\__||_| \___|\__\__||_||_|`, "#34d399"},
		{`           |__/                                `, "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
