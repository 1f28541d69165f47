package client

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/mattn/go-runewidth"

	"minichat/pkg/models"
)

var loginContent = buildLoginContent()

type styleSet struct {
	title         lipgloss.Style
	dayHeader     lipgloss.Style
	sender        lipgloss.Style
	timestamp     lipgloss.Style
	mediaTag      lipgloss.Style
	pendingTag    lipgloss.Style
	label         lipgloss.Style
	value         lipgloss.Style
	logLabel      lipgloss.Style
	logBody       lipgloss.Style
	logLabelError lipgloss.Style
	logBodyError  lipgloss.Style
	confirmBox    lipgloss.Style
}

func buildStyles() styleSet {
	base := lipgloss.NewStyle()
	return styleSet{
		title:         base.Foreground(lipgloss.Color("13")).Bold(true),
		dayHeader:     base.Foreground(lipgloss.Color("8")).Bold(true),
		sender:        base.Bold(true),
		timestamp:     base.Foreground(lipgloss.Color("8")),
		mediaTag:      base.Foreground(lipgloss.Color("14")),
		pendingTag:    base.Foreground(lipgloss.Color("11")),
		label:         base.Foreground(lipgloss.Color("8")),
		value:         base.Foreground(lipgloss.Color("15")),
		logLabel:      base.Foreground(lipgloss.Color("11")).Bold(true),
		logBody:       base.Foreground(lipgloss.Color("7")),
		logLabelError: base.Foreground(lipgloss.Color("9")).Bold(true),
		logBodyError:  base.Foreground(lipgloss.Color("9")),
		confirmBox:    base.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Bold(true),
	}
}

// View renders the full terminal frame.
func (a *App) View() string {
	var b strings.Builder

	if a.view == ViewLogin {
		b.WriteString(loginContent)
		b.WriteString("\n\n")
		b.WriteString(a.styles.label.Render("Nome: "))
		b.WriteString(a.renderInputLine())
		b.WriteString("\n")
		b.WriteString(a.logLineView())
		return b.String()
	}

	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.confirm != nil {
		b.WriteString(a.styles.confirmBox.Render(" " + a.confirm.text + " [Enter/y confirma, Esc/n cancela] "))
		b.WriteString("\n")
	} else {
		b.WriteString(a.renderInputLine())
		b.WriteString("\n")
	}

	b.WriteString(a.logLineView())
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	return b.String()
}

func (a *App) renderInputLine() string {
	prompt := ""
	if a.view == ViewChat {
		prompt = "> "
		if a.attachment != nil {
			prompt = a.styles.mediaTag.Render("["+filepath.Base(a.attachment.path)+"] ") + prompt
		}
	}
	before := string(a.input[:a.cursor])
	after := string(a.input[a.cursor:])
	return prompt + before + cursorIndicator + after
}

func (a *App) statusLine() string {
	sending := "-"
	if a.sending {
		sending = a.spin.View() + "enviando"
	}
	counter := fmt.Sprintf("%d/%d", len(a.input), maxChars)
	parts := []string{
		a.styles.title.Render("MiniChat"),
		a.styles.label.Render("Servidor") + ": " + a.styles.value.Render(a.cfg.ServerURL),
		a.styles.label.Render("Usuário") + ": " + a.styles.value.Render(a.username),
		a.styles.label.Render("Mensagens") + ": " + a.styles.value.Render(fmt.Sprintf("%d", len(a.messages))),
		a.styles.label.Render(counter),
		a.styles.label.Render("Envio") + ": " + a.styles.value.Render(sending),
	}
	return strings.Join(parts, " | ")
}

func (a *App) logLineView() string {
	if a.logLine.body == "" {
		return " "
	}
	labelStyle := a.styles.logLabel
	bodyStyle := a.styles.logBody
	if a.logLine.err {
		labelStyle = a.styles.logLabelError
		bodyStyle = a.styles.logBodyError
	}
	return labelStyle.Render(a.logLine.label) + " " + bodyStyle.Render(a.logLine.body)
}

func (a *App) refreshViewport() {
	width := a.viewport.Width
	if width <= 0 {
		width = a.width
	}
	if len(a.messages) == 0 {
		a.viewport.SetContent("Nenhuma mensagem ainda. Digite e pressione Enter para enviar.")
		a.viewport.GotoBottom()
		return
	}
	lines := a.renderTranscript(time.Now())
	a.viewport.SetContent(strings.Join(wrapLines(lines, width), "\n"))
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript(now time.Time) []string {
	var lines []string
	for _, group := range GroupByDay(a.messages, now) {
		lines = append(lines, a.styles.dayHeader.Render("── "+group.Label+" ──"))
		for _, m := range group.Messages {
			lines = append(lines, a.renderMessage(m))
		}
		lines = append(lines, "")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func (a *App) renderMessage(m models.Message) string {
	avatar := lipgloss.NewStyle().
		Foreground(lipgloss.Color(SenderColor(m.Sender))).
		Bold(true).
		Render(Initials(m.Sender))

	var body string
	switch m.Type {
	case models.TypeImage:
		body = a.styles.mediaTag.Render("[imagem] " + a.api.ResolveURL(m.Content))
	case models.TypeAudio:
		body = a.styles.mediaTag.Render("[áudio] " + a.api.ResolveURL(m.Content))
	default:
		body = m.Content
	}

	line := fmt.Sprintf("%s %s %s  %s",
		a.styles.timestamp.Render(m.Timestamp.Local().Format("15:04")),
		avatar,
		a.styles.sender.Render(m.Sender+":"),
		body,
	)
	if strings.HasPrefix(m.ID, "local-") {
		line += " " + a.styles.pendingTag.Render("(enviando)")
	}
	return line
}

func buildLoginContent() string {
	fig := figure.NewColorFigure("MINI CHAT", "3-d", "cyan", true)
	art := strings.TrimRight(fig.String(), "\n")
	info := []string{
		"Digite seu nome e pressione Enter para entrar.",
		"No chat: /attach anexa um arquivo, /reset limpa o histórico,",
		"/logout volta para esta tela e /quit encerra o cliente.",
	}

	var b strings.Builder
	b.WriteString(art)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(info, "\n"))
	return b.String()
}

func wrapLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	const minWidth = 10
	if width < minWidth {
		width = minWidth
	}

	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		segment := line
		if segment == "" {
			wrapped = append(wrapped, "")
			continue
		}
		for len(segment) > 0 {
			if runewidth.StringWidth(segment) <= width {
				wrapped = append(wrapped, segment)
				break
			}
			cut := wrapCutIndex(segment, width)
			part := strings.TrimRight(segment[:cut], " ")
			if part == "" && cut > 0 {
				part = segment[:cut]
			}
			wrapped = append(wrapped, part)
			segment = strings.TrimLeft(segment[cut:], " ")
			if segment == "" {
				break
			}
		}
	}
	return wrapped
}

func wrapCutIndex(s string, limit int) int {
	var width int
	lastSpace := -1
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > limit {
			if lastSpace >= 0 {
				return lastSpace + 1
			}
			if width == 0 {
				return i + 1
			}
			return i
		}
		width += rw
		if unicode.IsSpace(r) {
			lastSpace = i
		}
	}
	return len(s)
}
