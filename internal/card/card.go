// Package card renders the SVG payloads: the repository card, the user
// stats card and the error card shown in place of either when a lookup
// fails.
package card

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/statscard/statscard/internal/domain"
)

// EncodeHTML entity-encodes text before it is embedded in SVG markup.
func EncodeHTML(s string) string {
	return html.EscapeString(s)
}

// KFormat renders counts the way the cards display them: 999 stays
// numeric, larger values collapse to one decimal with a "k" suffix.
func KFormat(n int) string {
	if n > -1000 && n < 1000 {
		return strconv.Itoa(n)
	}
	return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
}

// WrapText word-wraps text to at most width characters per line and at
// most maxLines lines. When the text overflows, the last line gets an
// ellipsis.
func WrapText(text string, width, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] += "..."
	}
	return lines
}

// RenderError produces the fixed-size error card. The primary message and
// the secondary hint are entity-encoded; styling lives in embedded CSS
// classes so the card is self-contained.
func RenderError(message, secondary string) string {
	return fmt.Sprintf(`<svg width="576.5" height="120" viewBox="0 0 576.5 120" fill="none" xmlns="http://www.w3.org/2000/svg">
<style>
.text { font: 600 16px 'Segoe UI', Ubuntu, Sans-Serif; fill: #2f80ed }
.small { font: 600 12px 'Segoe UI', Ubuntu, Sans-Serif; fill: #252525 }
.gray { fill: #858585 }
</style>
<rect x="0.5" y="0.5" width="575.5" height="99%%" rx="4.5" fill="#fffefe" stroke="#e4e2e2"/>
<text x="25" y="45" class="text">Something went wrong!</text>
<text data-testid="message" x="25" y="55" class="text small">
<tspan x="25" dy="18">%s</tspan>
<tspan x="25" dy="18" class="gray">%s</tspan>
</text>
</svg>`, EncodeHTML(message), EncodeHTML(secondary))
}

// RenderRepoCard produces the repository pin card.
func RenderRepoCard(r *domain.RepoStats) string {
	var b strings.Builder

	b.WriteString(`<svg width="400" height="140" viewBox="0 0 400 140" fill="none" xmlns="http://www.w3.org/2000/svg">
<style>
.header { font: 600 18px 'Segoe UI', Ubuntu, Sans-Serif; fill: #2f80ed }
.description { font: 400 13px 'Segoe UI', Ubuntu, Sans-Serif; fill: #434d58 }
.stat { font: 600 12px 'Segoe UI', Ubuntu, Sans-Serif; fill: #434d58 }
</style>
<rect x="0.5" y="0.5" width="399" height="99%" rx="4.5" fill="#fffefe" stroke="#e4e2e2"/>
`)
	fmt.Fprintf(&b, `<text x="25" y="33" class="header" data-testid="header">%s</text>%s`, EncodeHTML(r.Name), "\n")

	badge := ""
	switch {
	case r.IsTemplate:
		badge = "Template"
	case r.IsArchived:
		badge = "Archived"
	}
	if badge != "" {
		fmt.Fprintf(&b, `<text x="370" y="33" text-anchor="end" class="stat" data-testid="badge">%s</text>%s`, badge, "\n")
	}

	desc := r.Description
	if desc == "" {
		desc = "No description provided"
	}
	for i, line := range WrapText(desc, 55, 3) {
		fmt.Fprintf(&b, `<text x="25" y="%d" class="description">%s</text>%s`, 55+i*16, EncodeHTML(line), "\n")
	}

	if r.PrimaryLanguage != nil {
		color := r.PrimaryLanguage.Color
		if color == "" {
			color = "#858585"
		}
		fmt.Fprintf(&b, `<circle cx="30" cy="116" r="5" fill="%s"/>%s`, color, "\n")
		fmt.Fprintf(&b, `<text x="40" y="120" class="stat" data-testid="lang">%s</text>%s`, EncodeHTML(r.PrimaryLanguage.Name), "\n")
	}
	fmt.Fprintf(&b, `<text x="200" y="120" class="stat" data-testid="stars">&#9733; %s</text>%s`, KFormat(r.Stars), "\n")
	fmt.Fprintf(&b, `<text x="280" y="120" class="stat" data-testid="forks">&#8916; %s</text>%s`, KFormat(r.Forks), "\n")
	b.WriteString("</svg>")

	return b.String()
}

// RenderStatsCard produces the user contribution card with the rank badge.
func RenderStatsCard(s *domain.UserStats) string {
	var b strings.Builder

	b.WriteString(`<svg width="450" height="195" viewBox="0 0 450 195" fill="none" xmlns="http://www.w3.org/2000/svg">
<style>
.header { font: 600 18px 'Segoe UI', Ubuntu, Sans-Serif; fill: #2f80ed }
.stat { font: 600 14px 'Segoe UI', Ubuntu, Sans-Serif; fill: #434d58 }
.rank-text { font: 800 24px 'Segoe UI', Ubuntu, Sans-Serif; fill: #434d58 }
</style>
<rect x="0.5" y="0.5" width="449" height="99%" rx="4.5" fill="#fffefe" stroke="#e4e2e2"/>
`)
	fmt.Fprintf(&b, `<text x="25" y="35" class="header" data-testid="header">%s's GitHub Stats</text>%s`, EncodeHTML(s.Name), "\n")

	rows := []struct {
		label string
		value int
	}{
		{"Total Stars Earned:", s.TotalStars},
		{"Total Commits:", s.TotalCommits},
		{"Total PRs:", s.TotalPRs},
		{"Total Issues:", s.TotalIssues},
		{"Contributed to:", s.ContributedTo},
	}
	for i, row := range rows {
		y := 60 + i*25
		fmt.Fprintf(&b, `<text x="25" y="%d" class="stat">%s</text>%s`, y, row.label, "\n")
		fmt.Fprintf(&b, `<text x="220" y="%d" class="stat" data-testid="stat">%s</text>%s`, y, KFormat(row.value), "\n")
	}

	fmt.Fprintf(&b, `<circle cx="375" cy="100" r="40" fill="none" stroke="#2f80ed" stroke-width="6"/>%s`, "\n")
	fmt.Fprintf(&b, `<text x="375" y="110" text-anchor="middle" class="rank-text" data-testid="level">%s</text>%s`, s.Rank.Level, "\n")
	b.WriteString("</svg>")

	return b.String()
}
