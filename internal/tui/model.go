// Package tui hosts the chat widget in a bubbletea terminal program.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/zhouzirui/mindcare/internal/model/chat"
	"github.com/zhouzirui/mindcare/internal/widget"
)

// replyMsg carries a finished exchange back into the event loop.
type replyMsg struct {
	outcome widget.Outcome
}

// Model is the terminal chat screen. It is the widget's Surface; every
// surface call happens inside Update, on the bubbletea goroutine.
type Model struct {
	ctx    context.Context
	widget *widget.Widget
	styles Styles

	input    textinput.Model
	log      viewport.Model
	messages []chat.Message
	params   string
	pending  int

	endpoint string
	width    int
	height   int
}

// New builds the chat screen around sender.
func New(ctx context.Context, sender widget.Sender, endpoint string, logger *zap.Logger) *Model {
	input := textinput.New()
	input.Placeholder = "今の気持ちを書いてみてください (Enter で送信, Esc で終了)"
	input.Prompt = "> "
	input.Focus()

	m := &Model{
		ctx:      ctx,
		styles:   DefaultStyles(),
		input:    input,
		log:      viewport.New(80, 20),
		endpoint: endpoint,
	}
	m.widget = widget.New(m, sender, logger)
	return m
}

// AppendMessage implements widget.Surface.
func (m *Model) AppendMessage(msg chat.Message) {
	m.messages = append(m.messages, msg)
	m.log.SetContent(m.renderLog())
}

// ScrollToBottom implements widget.Surface.
func (m *Model) ScrollToBottom() {
	m.log.GotoBottom()
}

// ClearInput implements widget.Surface.
func (m *Model) ClearInput() {
	m.input.Reset()
}

// ShowParameters implements widget.Surface.
func (m *Model) ShowParameters(text string) {
	m.params = text
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case replyMsg:
		m.pending--
		m.widget.Render(msg.outcome)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text, ok := m.widget.Submit(m.input.Value())
			if !ok {
				return m, nil
			}
			m.pending++
			return m, m.exchange(text)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// exchange runs the network round trip off the event loop.
func (m *Model) exchange(text string) tea.Cmd {
	w, ctx := m.widget, m.ctx
	return func() tea.Msg {
		return replyMsg{outcome: w.Exchange(ctx, text)}
	}
}

func (m *Model) View() string {
	title := m.styles.Title.Render("こころのチャット")
	logBox := m.styles.LogBox.Render(m.log.View())

	params := m.params
	if params == "" {
		params = "-"
	}
	paramsBox := m.styles.ParamsBox.
		Width(m.paramsWidth()).
		Height(m.log.Height).
		Render(m.styles.ParamsHead.Render("感情パラメータ") + "\n" + params)

	body := lipgloss.JoinHorizontal(lipgloss.Top, logBox, paramsBox)

	status := m.endpoint
	if m.pending > 0 {
		status = fmt.Sprintf("%s  送信中 %d", m.endpoint, m.pending)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		m.input.View(),
		m.styles.Status.Render(status),
	)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	logWidth := width*2/3 - 2
	if logWidth < 20 {
		logWidth = 20
	}
	logHeight := height - 6
	if logHeight < 3 {
		logHeight = 3
	}
	m.log.Width = logWidth
	m.log.Height = logHeight
	m.input.Width = width - 4

	m.log.SetContent(m.renderLog())
	m.log.GotoBottom()
}

func (m *Model) paramsWidth() int {
	w := m.width - m.log.Width - 6
	if w < 20 {
		return 20
	}
	return w
}

func (m *Model) renderLog() string {
	wrap := lipgloss.NewStyle().Width(m.log.Width)

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case msg.Sender == chat.SenderUser:
			b.WriteString(wrap.Render(m.styles.User.Render("you> ") + msg.Text))
		case msg.Failed:
			b.WriteString(wrap.Render(m.styles.Failure.Render("ai> " + msg.Text)))
		default:
			b.WriteString(wrap.Render(m.styles.AI.Render("ai> ") + msg.Text))
		}
	}
	return b.String()
}
