package tui

import "regexp"

var ansiScreenStrip = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiScreenStrip.ReplaceAllString(s, "")
}
