package client

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"minichat/pkg/config"
	"minichat/pkg/models"
)

// App implements the bubbletea tea.Model interface for the terminal client.
type App struct {
	cfg      config.ClientConfig
	api      *API
	view     PrimaryView
	username string

	input  []rune
	cursor int

	messages []models.Message
	pending  []models.Message

	sending    bool
	attachment *attachment
	confirm    *confirmState

	viewport viewport.Model
	spin     spinner.Model
	styles   styleSet
	logLine  logEntry
	width    int
	height   int
	keys     keyMap
}

// PrimaryView enumerates the main content panels.
type PrimaryView int

const (
	ViewLogin PrimaryView = iota
	ViewChat
)

type attachment struct {
	path  string
	mtype models.MessageType
}

// confirmState is a modal prompt. Enter or y runs the callback, esc or
// n dismisses it.
type confirmState struct {
	text      string
	onConfirm func() tea.Cmd
}

type logEntry struct {
	label string
	body  string
	err   bool
}

type keyMap struct {
	quit key.Binding
}

const (
	maxChars             = 200
	cursorIndicator      = "|"
	defaultInputCapacity = 256
)

// NewApp returns a Bubble Tea model showing the login panel.
func NewApp(cfg config.ClientConfig) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	app := &App{
		cfg:      cfg,
		api:      NewAPI(cfg.ServerURL),
		view:     ViewLogin,
		input:    make([]rune, 0, defaultInputCapacity),
		viewport: viewport.New(0, 0),
		spin:     sp,
		styles:   buildStyles(),
		keys: keyMap{
			quit: key.NewBinding(key.WithKeys("ctrl+c")),
		},
	}
	return app
}

// Init is part of the tea.Model interface.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update handles user input and internal events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(m.Width, m.Height)
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case pollTickMsg:
		if a.view != ViewChat {
			return a, nil
		}
		return a, tea.Batch(a.fetchMessages(), a.pollTick())
	case spinner.TickMsg:
		if !a.sending {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(m)
		return a, cmd
	case pollResultMsg:
		return a.handlePollResult(m)
	case sendResultMsg:
		return a.handleSendResult(m)
	case uploadResultMsg:
		return a.handleUploadResult(m)
	case resetResultMsg:
		return a.handleResetResult(m)
	default:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(m)
		return a, cmd
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.quit) {
		return a, tea.Quit
	}

	if a.confirm != nil {
		return a.handleConfirmKey(msg)
	}

	switch msg.Type {
	case tea.KeyPgUp:
		a.viewport.LineUp(a.viewport.Height)
		return a, nil
	case tea.KeyPgDown:
		a.viewport.LineDown(a.viewport.Height)
		return a, nil
	case tea.KeyUp:
		a.viewport.LineUp(1)
		return a, nil
	case tea.KeyDown:
		a.viewport.LineDown(1)
		return a, nil
	case tea.KeyLeft:
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case tea.KeyRight:
		if a.cursor < len(a.input) {
			a.cursor++
		}
		return a, nil
	case tea.KeyHome:
		a.cursor = 0
		return a, nil
	case tea.KeyEnd:
		a.cursor = len(a.input)
		return a, nil
	case tea.KeyEnter:
		return a.handleEnter()
	case tea.KeyBackspace:
		if a.cursor > 0 && len(a.input) > 0 {
			a.input = append(a.input[:a.cursor-1], a.input[a.cursor:]...)
			a.cursor--
		}
		return a, nil
	case tea.KeyDelete:
		if a.cursor < len(a.input) {
			a.input = append(a.input[:a.cursor], a.input[a.cursor+1:]...)
		}
		return a, nil
	case tea.KeyEsc:
		a.attachment = nil
		a.clearInput()
		return a, nil
	case tea.KeySpace:
		a.insertRunes([]rune{' '})
		return a, nil
	}

	if len(msg.Runes) > 0 {
		a.insertRunes(msg.Runes)
	}
	return a, nil
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter, msg.String() == "y", msg.String() == "s":
		confirm := a.confirm
		a.confirm = nil
		if confirm.onConfirm != nil {
			return a, confirm.onConfirm()
		}
		return a, nil
	case msg.Type == tea.KeyEsc, msg.String() == "n":
		a.confirm = nil
		a.logf("Operação cancelada")
		return a, nil
	}
	return a, nil
}

func (a *App) handleEnter() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(string(a.input))

	if a.view == ViewLogin {
		if raw == "" {
			a.logErrorf("Digite um nome para entrar")
			return a, nil
		}
		a.username = raw
		a.view = ViewChat
		a.clearInput()
		a.logf("Conectado como %s", a.username)
		return a, tea.Batch(a.fetchMessages(), a.pollTick())
	}

	if raw == "" && a.attachment == nil {
		return a, nil
	}
	if strings.HasPrefix(raw, "/") {
		a.clearInput()
		return a, a.executeCommand(raw)
	}
	return a.submitMessage(raw)
}

// submitMessage appends an optimistic local record immediately and
// reconciles it with the server copy once the POST returns.
func (a *App) submitMessage(content string) (tea.Model, tea.Cmd) {
	if a.sending {
		a.logErrorf("Aguarde o envio anterior terminar")
		return a, nil
	}

	if att := a.attachment; att != nil {
		a.attachment = nil
		a.clearInput()
		a.sending = true
		a.logf("Enviando arquivo %s ...", att.path)
		return a, tea.Batch(a.uploadFile(att), a.spin.Tick)
	}

	content = expandEmoji(content)
	if len([]rune(content)) > maxChars {
		a.logErrorf("Mensagem excede o limite de %d caracteres", maxChars)
		return a, nil
	}

	local := models.Message{
		ID:        "local-" + uuid.NewString(),
		Content:   content,
		Sender:    a.username,
		Type:      models.TypeText,
		Timestamp: time.Now().UTC(),
	}
	a.pending = append(a.pending, local)
	a.clearInput()
	a.sending = true
	a.refreshViewport()
	return a, tea.Batch(a.sendMessage(local), a.spin.Tick)
}

func (a *App) handlePollResult(msg pollResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.logErrorf("Erro ao carregar mensagens: %v", msg.Err)
		return a, nil
	}
	a.messages = MergeMessages(msg.Messages, a.pending)
	a.refreshViewport()
	return a, nil
}

func (a *App) handleSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	a.sending = false
	a.dropPending(msg.LocalID)
	// a poll that finished while the POST was in flight may have merged
	// the local record into messages, where the server copy's new id
	// cannot dedup against it
	a.dropMessage(msg.LocalID)
	if msg.Err != nil {
		a.logErrorf("Erro ao enviar mensagem: %v", msg.Err)
		a.messages = MergeMessages(a.messages, a.pending)
		a.refreshViewport()
		return a, nil
	}
	a.messages = MergeMessages(append(a.messages, msg.Message), a.pending)
	a.refreshViewport()
	return a, nil
}

func (a *App) handleUploadResult(msg uploadResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.sending = false
		a.logErrorf("Erro ao fazer upload: %v", msg.Err)
		return a, nil
	}
	local := models.Message{
		ID:        "local-" + uuid.NewString(),
		Content:   msg.URL,
		Sender:    a.username,
		Type:      msg.Type,
		Timestamp: time.Now().UTC(),
	}
	a.pending = append(a.pending, local)
	a.refreshViewport()
	return a, a.sendMessage(local)
}

func (a *App) handleResetResult(msg resetResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.logErrorf("Erro ao limpar o chat: %v", msg.Err)
		return a, nil
	}
	a.messages = nil
	a.pending = nil
	a.refreshViewport()
	a.logf("Chat limpo com sucesso!")
	return a, nil
}

func (a *App) dropPending(localID string) {
	for i, m := range a.pending {
		if m.ID == localID {
			a.pending = append(a.pending[:i], a.pending[i+1:]...)
			return
		}
	}
}

func (a *App) dropMessage(id string) {
	for i, m := range a.messages {
		if m.ID == id {
			a.messages = append(a.messages[:i], a.messages[i+1:]...)
			return
		}
	}
}

func (a *App) insertRunes(runes []rune) {
	if len(runes) == 0 {
		return
	}
	insertion := len(runes)
	currentLen := len(a.input)
	a.input = append(a.input, make([]rune, insertion)...)
	copy(a.input[a.cursor+insertion:], a.input[a.cursor:currentLen])
	copy(a.input[a.cursor:], runes)
	a.cursor += insertion
}

func (a *App) clearInput() {
	a.input = a.input[:0]
	a.cursor = 0
}

func (a *App) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.width = width
	a.height = height
	const reservedLines = 6
	viewportHeight := height - reservedLines
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	a.viewport.Width = width
	a.viewport.Height = viewportHeight
	a.refreshViewport()
}
