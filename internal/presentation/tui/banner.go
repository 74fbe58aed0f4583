package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the SparkBridge banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   ____                  _    ____       _     _            ", "#fbbf24"},
		{"  / ___| _ __   __ _ _ __| | _| __ ) _ __(_) __| | __ _  ___ ", "#f59e0b"},
		{"  \\___ \\| '_ \\ / _` | '__| |/ /  _ \\| '__| |/ _` |/ _` |/ _ \\", "#f97316"},
		{"   ___) | |_) | (_| | |  |   <| |_) | |  | | (_| | (_| |  __/", "#ea580c"},
		{"  |____/| .__/ \\__,_|_|  |_|\\_\\____/|_|  |_|\\__,_|\\__, |\\___|", "#dc2626"},
		{"        |_|                                        |___/     ", "#b91c1c"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
