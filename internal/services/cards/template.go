package cards

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/xaytheon/xaytheon-backend/internal/models"
)

// Card layout constants, in SVG user units.
const (
	cardWidth  = 760
	cardHeight = 200

	titleMaxRunes = 80
	descMaxRunes  = 140
	techMaxRunes  = 110
)

// Render produces the fixed-layout SVG card for one contribution.
// imageDataURI may be empty, in which case the image block is omitted.
// Output is deterministic for fixed inputs.
func Render(rec models.Contribution, imageDataURI string) []byte {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, cardWidth, cardHeight, cardWidth, cardHeight))
	b.WriteString(`<rect x="0" y="0" width="760" height="200" rx="16" fill="#ffffff" stroke="#e5e7eb"/>`)

	title := escape(truncate(rec.Project, titleMaxRunes))
	b.WriteString(fmt.Sprintf(`<text x="24" y="46" font-family="Helvetica, Arial, sans-serif" font-size="22" font-weight="bold" fill="#111827">%s</text>`, title))

	if meta := metaLine(rec); meta != "" {
		b.WriteString(fmt.Sprintf(`<text x="24" y="74" font-family="Helvetica, Arial, sans-serif" font-size="13" fill="#4b5563">%s</text>`, escape(meta)))
	}

	if desc := strings.TrimSpace(rec.Description); desc != "" {
		b.WriteString(fmt.Sprintf(`<text x="24" y="104" font-family="Helvetica, Arial, sans-serif" font-size="13" fill="#374151">%s</text>`, escape(truncate(desc, descMaxRunes))))
	}

	if tech := strings.TrimSpace(rec.Tech); tech != "" {
		b.WriteString(fmt.Sprintf(`<text x="24" y="132" font-family="Helvetica, Arial, sans-serif" font-size="12" fill="#6b7280">%s</text>`, escape(truncate(tech, techMaxRunes))))
	}

	if host := linkHostname(rec.Link); host != "" {
		b.WriteString(fmt.Sprintf(`<text x="24" y="176" font-family="Helvetica, Arial, sans-serif" font-size="12" fill="#2563eb">%s</text>`, escape(host)))
	}

	if imageDataURI != "" {
		// Screenshot clipped into a rounded rect in the top-right corner.
		b.WriteString(`<clipPath id="shot"><rect x="560" y="20" width="176" height="160" rx="12"/></clipPath>`)
		b.WriteString(fmt.Sprintf(`<image x="560" y="20" width="176" height="160" clip-path="url(#shot)" preserveAspectRatio="xMidYMid slice" href="%s"/>`, imageDataURI))
	}

	b.WriteString(`</svg>`)
	return []byte(b.String())
}

// metaLine joins type, program and the formatted date with a separator,
// skipping empty segments.
func metaLine(rec models.Contribution) string {
	var parts []string
	if t := strings.TrimSpace(rec.Type); t != "" {
		parts = append(parts, t)
	}
	if p := strings.TrimSpace(rec.Program); p != "" {
		parts = append(parts, p)
	}
	if d := formatDate(rec.Date); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, " · ")
}

func formatDate(date *string) string {
	if date == nil {
		return ""
	}
	raw := strings.TrimSpace(*date)
	if raw == "" {
		return ""
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("Jan 2, 2006")
	}
	return raw
}

// linkHostname extracts the hostname from the link field. Missing or
// invalid links yield "" so the card simply omits the line.
func linkHostname(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Hostname()
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

func escape(s string) string {
	return html.EscapeString(s)
}
