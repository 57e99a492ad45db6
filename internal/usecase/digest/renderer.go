package digest

import (
	"fmt"
	"html"
	"strings"

	"newsdigest/internal/domain/entity"
)

// Subject is the subject line of every digest email.
const Subject = "Your favorite topics news digest"

// Message is a rendered digest email ready for transport.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// RenderDigest turns an article list into the plain-text and HTML
// bodies of a digest email.
func RenderDigest(to string, articles []entity.ArticleSummary) Message {
	return Message{
		To:      to,
		Subject: Subject,
		Text:    renderText(articles),
		HTML:    renderHTML(articles),
	}
}

func renderText(articles []entity.ArticleSummary) string {
	var b strings.Builder
	b.WriteString("Hello!\n\n")
	b.WriteString("Here is a summary of the latest news for your favorite topics:\n\n")

	for i, article := range articles {
		title := article.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		if article.SourceName != "" {
			fmt.Fprintf(&b, "   Source: %s\n", article.SourceName)
		}
		if article.URL != "" {
			fmt.Fprintf(&b, "   Link: %s\n", article.URL)
		}
		b.WriteString("\n")
	}

	b.WriteString("To adjust your topics or the sending frequency, visit your profile in the app.\n\n")
	b.WriteString("— News Digest")
	return b.String()
}

func renderHTML(articles []entity.ArticleSummary) string {
	var items strings.Builder
	for _, article := range articles {
		title := article.Title
		if title == "" {
			title = "Untitled"
		}
		items.WriteString(`<li style="margin-bottom: 12px;">`)
		fmt.Fprintf(&items, `<a href="%s" target="_blank" rel="noopener noreferrer"><strong>%s</strong></a>`,
			html.EscapeString(article.URL), html.EscapeString(title))
		if article.SourceName != "" {
			fmt.Fprintf(&items, `<div style="font-size: 12px; color: #555;">Source: %s</div>`,
				html.EscapeString(article.SourceName))
		}
		items.WriteString("</li>")
	}

	var b strings.Builder
	b.WriteString("<p>Hello!</p>")
	b.WriteString("<p>Here is a summary of the latest news for your favorite topics:</p>")
	b.WriteString("<ul>")
	b.WriteString(items.String())
	b.WriteString("</ul>")
	b.WriteString(`<p style="font-size: 13px; color: #555;">To adjust your favorite topics or the sending frequency, visit the profile area in the app.</p>`)
	b.WriteString("<p>— News Digest</p>")
	return b.String()
}
