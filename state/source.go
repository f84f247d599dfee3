/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package state

import (
	"net/url"
	"regexp"
	"strings"
)

// Recognized source shapes, tried in order.
var sourcePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ParseSourceID extracts a video id from a watch URL, a short link, an embed
// URL or a bare 11 character id. Anything else is returned unchanged.
func ParseSourceID(raw string) string {
	for _, p := range sourcePatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return raw
}

// EmbedURL is the iframe address for a source id. The player starts muted
// with the JS API enabled so it accepts postMessage commands.
func EmbedURL(id string) string {
	var b strings.Builder
	b.WriteString("https://www.youtube.com/embed/")
	b.WriteString(url.PathEscape(id))
	b.WriteString("?autoplay=1&mute=1&enablejsapi=1&controls=0&disablekb=1&modestbranding=1&rel=0&showinfo=0")
	return b.String()
}
