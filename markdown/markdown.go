// Package markdown renders the small Markdown dialect used by post bodies.
//
// Images may reference uploaded media by id, ![alt](media:42){style}; such
// images are emitted with class="wp-image-42" and data-id="42" so the
// rendered HTML can be scanned for the attachments it embeds.
package markdown

import (
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedList      = regexp.MustCompile(`^(\d+)\.\s`)
	// ![alt](src){style} or ![alt](src){style|width|height}
	reImg = regexp.MustCompile(`\!\[(.*?)\]\((.*?)\)\{([^|}]*?)(?:\|(\d+)\|(\d+))?\}`)
)

const mediaScheme = "media:"

// Media is what a media reference resolves to.
type Media struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

// MediaFunc resolves an uploaded media id.
type MediaFunc func(id int64) (Media, bool)

// Renderer converts Markdown to HTML. The zero value renders media
// references as their alt text.
type Renderer struct {
	Media MediaFunc
}

// HTML returns the HTML representation of md.
func (r Renderer) HTML(md string) string {
	st := &renderState{r: r}
	for _, raw := range strings.Split(md, "\n") {
		st.line(strings.TrimRight(raw, "\r"))
	}
	st.closeAll()
	st.closeCode()
	return st.out.String()
}

// Component returns a templ.Component that renders md.
func (r Renderer) Component(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, r.HTML(md))
		return err
	})
}

// Markdown renders md without media resolution.
func Markdown(content string) templ.Component {
	return Renderer{}.Component(content)
}

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
)

var closeTags = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
}

type renderState struct {
	r      Renderer
	out    strings.Builder
	open   block
	images int

	inCode    bool
	codeLang  bool
	tableBody bool
}

// enter closes the current block unless it is already kind.
// It reports whether kind was newly opened.
func (st *renderState) enter(kind block) bool {
	if st.open == kind {
		return false
	}
	st.closeAll()
	st.open = kind
	return true
}

func (st *renderState) closeAll() {
	switch st.open {
	case blockNone:
	case blockTable:
		if st.tableBody {
			st.out.WriteString("</tbody>")
		}
		st.out.WriteString("</table>")
		st.tableBody = false
	default:
		st.out.WriteString(closeTags[st.open])
	}
	st.open = blockNone
}

func (st *renderState) closeCode() {
	if !st.inCode {
		return
	}
	st.out.WriteString("</code></pre>")
	if st.codeLang {
		st.out.WriteString("</div>")
	}
	st.inCode = false
	st.codeLang = false
}

func (st *renderState) inline(s string) string {
	return st.r.formatInline(s, &st.images)
}

func (st *renderState) line(line string) {
	if strings.HasPrefix(line, "```") {
		if st.inCode {
			st.closeCode()
			return
		}
		st.closeAll()
		st.openCode(strings.TrimSpace(line[3:]))
		return
	}
	if st.inCode {
		st.out.WriteString(html.EscapeString(line))
		st.out.WriteByte('\n')
		return
	}
	if strings.TrimSpace(line) == "" {
		st.closeAll()
		return
	}

	switch {
	case strings.HasPrefix(line, "---"):
		st.closeAll()
		st.out.WriteString("<hr/>")
	case strings.HasPrefix(line, "### "):
		st.heading(3, line[4:])
	case strings.HasPrefix(line, "## "):
		st.heading(2, line[3:])
	case strings.HasPrefix(line, "# "):
		st.heading(1, line[2:])
	case strings.HasPrefix(line, "|"):
		st.tableRow(line)
	case strings.HasPrefix(line, "- "):
		if st.enter(blockList) {
			st.out.WriteString("<ul>")
		}
		st.out.WriteString("<li>" + st.inline(strings.TrimSpace(line[2:])) + "</li>")
	case reOrderedList.MatchString(line):
		if st.enter(blockOrdered) {
			st.out.WriteString("<ol>")
		}
		item := reOrderedList.ReplaceAllString(line, "")
		st.out.WriteString("<li>" + st.inline(strings.TrimSpace(item)) + "</li>")
	case strings.HasPrefix(line, "> "):
		if st.enter(blockQuote) {
			st.out.WriteString("<blockquote>")
		}
		st.out.WriteString(st.inline(strings.TrimSpace(line[2:])))
	default:
		if st.enter(blockPara) {
			st.out.WriteString("<p>")
		} else {
			st.out.WriteByte(' ')
		}
		st.out.WriteString(st.inline(strings.TrimSpace(line)) + "\n")
	}
}

func (st *renderState) openCode(lang string) {
	if lang != "" {
		l := html.EscapeString(lang)
		st.out.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + l + `">` + l + `</span>`)
		st.out.WriteString(`<pre class="code-block"><code class="language-` + l + `">`)
		st.codeLang = true
	} else {
		st.out.WriteString(`<pre class="code-block"><code>`)
	}
	st.inCode = true
}

func (st *renderState) heading(level int, text string) {
	st.closeAll()
	tag := "h" + strconv.Itoa(level)
	st.out.WriteString("<" + tag + ">" + st.inline(strings.TrimSpace(text)) + "</" + tag + ">")
}

func (st *renderState) tableRow(line string) {
	if st.enter(blockTable) {
		st.out.WriteString("<table><thead><tr>")
		for _, cell := range tableCells(line) {
			st.out.WriteString("<th>" + st.inline(cell) + "</th>")
		}
		st.out.WriteString("</tr></thead>")
		return
	}
	if !st.tableBody {
		st.out.WriteString("<tbody>")
		st.tableBody = true
	}
	if isTableSeparator(line) {
		return
	}
	st.out.WriteString("<tr>")
	for _, cell := range tableCells(line) {
		st.out.WriteString("<td>" + st.inline(cell) + "</td>")
	}
	st.out.WriteString("</tr>")
}

func tableCells(line string) []string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(line), "|"), "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	for _, cell := range tableCells(line) {
		if strings.Trim(cell, "-:") != "" {
			return false
		}
	}
	return true
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside attributes.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		if lt > 0 {
			b.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

type imgAttrs struct {
	src, alt, style string
	width, height   string
	mediaID         int64
}

// image resolves one image match into its attributes. ok is false when the
// source is unusable; the alt text is rendered instead.
func (r Renderer) image(match []string) (imgAttrs, bool) {
	a := imgAttrs{alt: match[1], style: match[3], width: "1024", height: "768"}
	if match[4] != "" && match[5] != "" {
		a.width, a.height = match[4], match[5]
	}

	src := strings.TrimSpace(html.UnescapeString(match[2]))
	if rest, ok := strings.CutPrefix(src, mediaScheme); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 || r.Media == nil {
			return a, false
		}
		m, found := r.Media(id)
		if !found || SafeURL(m.URL) == "" {
			return a, false
		}
		a.src = SafeURL(m.URL)
		a.mediaID = id
		if match[4] == "" && m.Width > 0 && m.Height > 0 {
			a.width, a.height = strconv.Itoa(m.Width), strconv.Itoa(m.Height)
		}
		if a.alt == "" {
			a.alt = html.EscapeString(m.Alt)
		}
		return a, true
	}

	a.src = SafeURL(match[2])
	return a, a.src != ""
}

func (r Renderer) formatInline(s string, imageCount *int) string {
	escaped := html.EscapeString(s)
	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		a, ok := r.image(match)
		if !ok {
			return match[1]
		}

		*imageCount++
		load := `loading="eager"`
		if *imageCount == 1 {
			load = `fetchpriority="high"`
		}
		var b strings.Builder
		b.WriteString(`<img ` + load)
		if a.mediaID > 0 {
			id := strconv.FormatInt(a.mediaID, 10)
			b.WriteString(` class="wp-image-` + id + `" data-id="` + id + `"`)
		}
		b.WriteString(` width="` + a.width + `" height="` + a.height + `" alt="` + a.alt + `" src="` + a.src + `"`)
		if a.style != "" {
			b.WriteString(` style="` + a.style + `"`)
		}
		b.WriteString(` decoding="async"/>`)
		return b.String()
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := `class="underline decoration-2 underline-offset-4"`
		if match[3] == "^" {
			attrs += ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `" ` + attrs + `>` + match[1] + `</a>`
	})

	// Inline code is swapped for placeholders so emphasis never reaches it.
	var code []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reInlineCode.FindStringSubmatch(m)
		code = append(code, "<code>"+match[1]+"</code>")
		return "\x00IC" + strconv.Itoa(len(code)-1) + "\x00"
	})
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		return reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
	})
	for i, c := range code {
		escaped = strings.Replace(escaped, "\x00IC"+strconv.Itoa(i)+"\x00", c, 1)
	}
	return escaped
}

// SafeURL validates and escapes a URL for use in HTML attributes. Only
// relative paths, fragments and http, https, mailto and tel URLs pass.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
