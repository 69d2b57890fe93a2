package tools

import (
	"fmt"
	"strings"

	"github.com/willmeyers/jmap-mcp-server/jmap"
)

const (
	previewChars  = 200
	unreadMarker  = " 🔴"
	noSubject     = "(No subject)"
	dateLayout    = "2006-01-02 15:04"
	dateSecLayout = "2006-01-02 15:04:05 MST"
)

func formatAddresses(addrs []jmap.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

func formatEmails(addrs []jmap.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.Email
	}
	return strings.Join(parts, ", ")
}

// formatSize renders a byte count as bytes, KB or MB.
func formatSize(size uint64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}

// truncate cuts s to n runes and marks the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func subjectLine(e jmap.Email) string {
	subject := e.Subject
	if subject == "" {
		subject = noSubject
	}
	if e.Unread {
		subject += unreadMarker
	}
	return subject
}
