package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"minichat/pkg/models"
)

type commandSpec struct {
	trigger     string
	usage       string
	description string
}

var commandCatalog = []commandSpec{
	{trigger: "/attach", usage: "/attach <path>", description: "Anexar imagem ou áudio para a próxima mensagem"},
	{trigger: "/reset", usage: "/reset", description: "Limpar permanentemente o chat"},
	{trigger: "/logout", usage: "/logout", description: "Voltar para a tela de login"},
	{trigger: "/help", usage: "/help", description: "Listar os comandos"},
	{trigger: "/quit", usage: "/quit", description: "Sair do cliente"},
}

func (a *App) executeCommand(raw string) tea.Cmd {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "/attach":
		if len(fields) < 2 {
			a.logErrorf("Uso: /attach <caminho>")
			return nil
		}
		a.stageAttachment(strings.Join(fields[1:], " "))
		return nil
	case "/reset":
		a.confirm = &confirmState{
			text: "Tem certeza que deseja LIMPAR PERMANENTEMENTE o chat? Isso não pode ser desfeito.",
			onConfirm: func() tea.Cmd {
				return a.resetChat()
			},
		}
		return nil
	case "/logout":
		a.username = ""
		a.view = ViewLogin
		a.messages = nil
		a.pending = nil
		a.attachment = nil
		a.clearInput()
		a.logf("Sessão encerrada")
		return nil
	case "/help":
		var b strings.Builder
		for i, c := range a.commandHelp() {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(c)
		}
		a.logf("%s", b.String())
		return nil
	case "/quit", "/exit":
		return tea.Quit
	default:
		a.logErrorf("Comando desconhecido: %s", fields[0])
		return nil
	}
}

func (a *App) commandHelp() []string {
	out := make([]string, 0, len(commandCatalog))
	for _, c := range commandCatalog {
		out = append(out, c.usage)
	}
	return out
}

// stageAttachment validates a local file and holds it until the next
// Enter sends it.
func (a *App) stageAttachment(path string) {
	mtype, ok := typeForFile(path)
	if !ok {
		a.logErrorf("Tipo de arquivo não suportado (use jpg, jpeg, png, mp3 ou wav)")
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		a.logErrorf("Arquivo não encontrado: %s", path)
		return
	}
	if info.IsDir() {
		a.logErrorf("%s é um diretório", path)
		return
	}
	a.attachment = &attachment{path: path, mtype: mtype}
	a.logf("Anexo pronto: %s (Enter envia, Esc cancela)", filepath.Base(path))
}

func typeForFile(path string) (models.MessageType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return models.TypeImage, true
	case ".mp3", ".wav":
		return models.TypeAudio, true
	}
	return "", false
}

type pollTickMsg time.Time

type pollResultMsg struct {
	Messages []models.Message
	Err      error
}

type sendResultMsg struct {
	LocalID string
	Message models.Message
	Err     error
}

type uploadResultMsg struct {
	URL  string
	Type models.MessageType
	Err  error
}

type resetResultMsg struct {
	Err error
}

func (a *App) pollTick() tea.Cmd {
	interval := a.cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (a *App) fetchMessages() tea.Cmd {
	api := a.api
	return func() tea.Msg {
		msgs, err := api.Messages()
		return pollResultMsg{Messages: msgs, Err: err}
	}
}

func (a *App) sendMessage(local models.Message) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		out := local
		out.ID = ""
		created, err := api.Send(out)
		return sendResultMsg{LocalID: local.ID, Message: created, Err: err}
	}
}

func (a *App) uploadFile(att *attachment) tea.Cmd {
	api := a.api
	path := att.path
	mtype := att.mtype
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadResultMsg{Err: err}
		}
		defer f.Close()
		url, err := api.Upload(path, f)
		return uploadResultMsg{URL: url, Type: mtype, Err: err}
	}
}

func (a *App) resetChat() tea.Cmd {
	api := a.api
	return func() tea.Msg {
		return resetResultMsg{Err: api.Reset()}
	}
}

// emojiShortcodes are expanded in outgoing text, standing in for the
// picker buttons of the web client.
var emojiShortcodes = map[string]string{
	":sorriso:":  "😀",
	":joinha:":   "👍",
	":coracao:":  "❤️",
	":festa:":    "🎉",
	":pensando:": "🤔",
}

func expandEmoji(content string) string {
	if !strings.Contains(content, ":") {
		return content
	}
	for code, emoji := range emojiShortcodes {
		content = strings.ReplaceAll(content, code, emoji)
	}
	return content
}

func (a *App) logf(format string, args ...interface{}) {
	a.logLine = logEntry{label: "[info]", body: fmt.Sprintf(format, args...)}
}

func (a *App) logErrorf(format string, args ...interface{}) {
	a.logLine = logEntry{label: "[erro]", body: fmt.Sprintf(format, args...), err: true}
}
