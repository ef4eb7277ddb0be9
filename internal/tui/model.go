package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/fundme/internal/actions"
	"github.com/kelsos/fundme/internal/async"
	"github.com/kelsos/fundme/internal/stats"
	"github.com/kelsos/fundme/internal/status"
)

type control int

const (
	controlConnect control = iota
	controlAmount
	controlFund
	controlBalance
	controlWithdraw
	controlCount
)

const maxLogs = 8

// OutcomeMsg carries a finished handler back to the UI goroutine
type OutcomeMsg struct {
	Outcome actions.Outcome
}

// StageMsg reports a handler state transition
type StageMsg struct {
	Action actions.Action
	State  actions.State
}

// StatusChanged asks for a redraw after the status message expired
type StatusChanged struct{}

type ReceiptMsg struct {
	Result async.Result
}

type LogMessage struct {
	Message string
}

// Watcher returns a channel that receives the receipt of hash, or nil
type Watcher func(hash common.Hash) <-chan async.Result

type Model struct {
	ctx      context.Context
	handlers *actions.Handlers
	notifier *status.Notifier
	stats    *stats.Stats
	watch    Watcher
	symbol   string

	focus           control
	amount          textinput.Model
	connectLabel    string
	connectDisabled bool
	inFlight        int
	stages          map[actions.Action]actions.State

	logs    []string
	spinner spinner.Model
	width   int
	height  int
	quit    bool
}

func NewModel(ctx context.Context, handlers *actions.Handlers, notifier *status.Notifier, counters *stats.Stats, symbol string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "0.01"
	ti.Prompt = symbol + " › "
	ti.CharLimit = 32
	ti.Width = 20

	return Model{
		ctx:          ctx,
		handlers:     handlers,
		notifier:     notifier,
		stats:        counters,
		symbol:       symbol,
		amount:       ti,
		connectLabel: actions.DefaultConnectLabel,
		stages:       make(map[actions.Action]actions.State),
		logs:         []string{},
		spinner:      sp,
		width:        80,
		height:       24,
	}
}

// WithWatcher enables receipt tracking of submitted transactions
func (m Model) WithWatcher(watch Watcher) Model {
	m.watch = watch
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKeyMsg(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case OutcomeMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		var cmd tea.Cmd
		m, cmd = m.applyOutcome(msg.Outcome)
		cmds = append(cmds, cmd)

	case StageMsg:
		m.stages[msg.Action] = msg.State

	case ReceiptMsg:
		m = m.handleReceipt(msg.Result)

	case LogMessage:
		m = m.addLog(msg.Message)

	case StatusChanged:
		// redraw only

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if m.focus == controlAmount {
			var cmd tea.Cmd
			m.amount, cmd = m.amount.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quit = true
		return m, tea.Quit
	case "q":
		if m.focus != controlAmount {
			m.quit = true
			return m, tea.Quit
		}
	case "tab", "down":
		return m.setFocus((m.focus + 1) % controlCount)
	case "shift+tab", "up":
		return m.setFocus((m.focus + controlCount - 1) % controlCount)
	case "enter":
		return m.press(m.focus)
	}

	if m.focus == controlAmount {
		var cmd tea.Cmd
		m.amount, cmd = m.amount.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) setFocus(c control) (Model, tea.Cmd) {
	m.focus = c
	if c == controlAmount {
		return m, m.amount.Focus()
	}
	m.amount.Blur()
	return m, nil
}

// press activates a control; every handler runs as its own command so presses can overlap
func (m Model) press(c control) (Model, tea.Cmd) {
	switch c {
	case controlConnect:
		if m.connectDisabled {
			return m, nil
		}
		return m.start(actions.ActionConnect, "", func(ctx context.Context) actions.Outcome {
			return m.handlers.Connect(ctx)
		})

	case controlAmount, controlFund:
		input := m.amount.Value()
		if _, err := actions.ValidateAmount(input); err != nil {
			// rejected before any provider work, no command needed
			return m.applyOutcome(m.handlers.Fund(m.ctx, input))
		}
		return m.start(actions.ActionFund, strings.TrimSpace(input), func(ctx context.Context) actions.Outcome {
			return m.handlers.Fund(ctx, input)
		})

	case controlBalance:
		return m.start(actions.ActionBalance, "", func(ctx context.Context) actions.Outcome {
			return m.handlers.GetBalance(ctx)
		})

	case controlWithdraw:
		return m.start(actions.ActionWithdraw, "", func(ctx context.Context) actions.Outcome {
			return m.handlers.Withdraw(ctx)
		})
	}
	return m, nil
}

func (m Model) start(action actions.Action, amount string, run func(ctx context.Context) actions.Outcome) (Model, tea.Cmd) {
	m.notifier.Show(m.handlers.PendingText(action, amount), true)
	m.inFlight++
	ctx := m.ctx
	return m, func() tea.Msg {
		return OutcomeMsg{Outcome: run(ctx)}
	}
}

func (m Model) applyOutcome(outcome actions.Outcome) (Model, tea.Cmd) {
	m.notifier.Show(outcome.Text, outcome.Success)
	delete(m.stages, outcome.Action)

	if outcome.Success {
		m = m.addLog(fmt.Sprintf("✅ %s", outcome.Text))
	} else {
		m = m.addLog(fmt.Sprintf("❌ %s", outcome.Text))
	}

	if outcome.PromptInstall() {
		m.connectLabel = actions.InstallPromptLabel
	}

	if outcome.Action == actions.ActionConnect && outcome.Success {
		m.connectLabel = actions.ConnectedLabel
		m.connectDisabled = true
	}

	if outcome.Donated() {
		m.amount.SetValue("")
		m.stats.RecordDonation(outcome.Wei)
	}

	if outcome.TxHash != (common.Hash{}) {
		m = m.addLog(fmt.Sprintf("🔗 %s tx %s", outcome.Action, outcome.TxHash.Hex()))
		return m, m.waitReceipt(outcome.TxHash)
	}
	return m, nil
}

func (m Model) waitReceipt(hash common.Hash) tea.Cmd {
	watch := m.watch
	if watch == nil {
		return nil
	}
	return func() tea.Msg {
		ch := watch(hash)
		if ch == nil {
			return nil
		}
		result, ok := <-ch
		if !ok {
			return nil
		}
		return ReceiptMsg{Result: result}
	}
}

func (m Model) handleReceipt(result async.Result) Model {
	switch {
	case result.Err != nil:
		return m.addLog(fmt.Sprintf("⚠️ receipt for %s unavailable: %v", shortHash(result.Hash), result.Err))
	case result.Mined():
		return m.addLog(fmt.Sprintf("⛏️ %s mined in block %s", shortHash(result.Hash), result.Receipt.BlockNumber))
	default:
		return m.addLog(fmt.Sprintf("❌ %s reverted on chain", shortHash(result.Hash)))
	}
}

func (m Model) addLog(message string) Model {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), message))
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
	return m
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("☕ Buy Me a Coffee"))
	s.WriteString("\n\n")

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	summary := fmt.Sprintf("💰 Donations: %s %s | ☕ Coffees: %d | 🙌 Supporters: %d",
		m.stats.FormatDonations(), m.symbol, m.stats.Coffees(), m.stats.Supporters())
	if m.inFlight > 0 {
		summary += fmt.Sprintf(" | %s %d pending", m.spinner.View(), m.inFlight)
	}
	s.WriteString(summaryStyle.Render(summary))
	s.WriteString("\n\n")

	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(max(m.width-2, 40))

	var panel strings.Builder
	panel.WriteString(m.renderButton(controlConnect, m.connectLabel, m.connectDisabled))
	panel.WriteString("\n\n")
	panel.WriteString(m.amount.View())
	panel.WriteString("\n\n")
	panel.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderButton(controlFund, "Fund", false), "  ",
		m.renderButton(controlBalance, "Get Balance", false), "  ",
		m.renderButton(controlWithdraw, "Withdraw", false),
	))
	for _, action := range []actions.Action{actions.ActionConnect, actions.ActionFund, actions.ActionBalance, actions.ActionWithdraw} {
		if state, ok := m.stages[action]; ok {
			panel.WriteString(fmt.Sprintf("\n%s %s: %s", m.spinner.View(), action, state))
		}
	}

	s.WriteString(panelStyle.Render(panel.String()))
	s.WriteString("\n\n")

	if msg, visible := m.notifier.Current(); visible {
		color := "82"
		if !msg.Success {
			color = "196"
		}
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Bold(true)
		s.WriteString(statusStyle.Render(msg.Text))
	}
	s.WriteString("\n\n")

	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(max(m.width-2, 40)).
		Height(maxLogs + 1)

	var logSection strings.Builder
	logSection.WriteString("📝 Recent Activity\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	s.WriteString(footerStyle.Render("tab/shift+tab move | enter press | q quit"))

	return s.String()
}

func (m Model) renderButton(c control, label string, disabled bool) string {
	style := lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
	switch {
	case disabled:
		style = style.Foreground(lipgloss.Color("240")).BorderForeground(lipgloss.Color("240"))
	case m.focus == c:
		style = style.Foreground(lipgloss.Color("214")).BorderForeground(lipgloss.Color("214")).Bold(true)
	default:
		style = style.BorderForeground(lipgloss.Color("62"))
	}
	return style.Render(label)
}

func shortHash(hash common.Hash) string {
	hex := hash.Hex()
	return hex[:10] + "..." + hex[len(hex)-4:]
}
