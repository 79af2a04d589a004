package telegram

import (
	"strings"
	"unicode/utf8"
)

// MessageLimit задаёт максимальную длину сообщения Telegram в символах.
const MessageLimit = 4096

// SplitMessage режет текст на части не длиннее MessageLimit.
func SplitMessage(text string) []string {
	return SplitMessageLimit(text, MessageLimit)
}

// SplitMessageLimit собирает части из целых строк, пока они помещаются в limit символов.
// Строка длиннее limit режется по символам. Пустые строки на стыках частей отбрасываются.
func SplitMessageLimit(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	var (
		parts []string
		cur   strings.Builder
		size  int
	)
	flush := func() {
		if chunk := strings.Trim(cur.String(), "\n"); chunk != "" {
			parts = append(parts, chunk)
		}
		cur.Reset()
		size = 0
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		n := utf8.RuneCountInString(line)
		if size > 0 && size+1+n > limit {
			flush()
		}
		for n > limit {
			runes := []rune(line)
			cur.WriteString(string(runes[:limit]))
			size = limit
			flush()
			line = string(runes[limit:])
			n -= limit
		}
		if size > 0 {
			cur.WriteByte('\n')
			size++
		}
		cur.WriteString(line)
		size += n
	}
	flush()
	return parts
}
