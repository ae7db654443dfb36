package platforms

import (
	"regexp"
	"strings"

	"replyflow/internal/core"
)

const defaultTextLimit = 2000

var textLimits = map[core.Platform]int{
	core.PlatformTwitter:   280,
	core.PlatformInstagram: 2200,
	core.PlatformFacebook:  63206,
	core.PlatformLinkedIn:  3000,
	core.PlatformYouTube:   10000,
}

var (
	inlineSpaces = regexp.MustCompile(`[ \t]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

const ellipsis = "..."

// Sanitize prepares reply text for a platform: whitespace is normalized, Instagram gets a
// single line and the text is cut to the platform limit.
func Sanitize(platform core.Platform, text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if platform == core.PlatformInstagram {
		text = strings.ReplaceAll(text, "\n", " ")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaces.ReplaceAllString(line, " "))
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	text = strings.TrimSpace(text)

	limit, ok := textLimits[platform]
	if !ok {
		limit = defaultTextLimit
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
