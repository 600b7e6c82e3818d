// Command shinydb-shell is an interactive REPL over the text query
// language. It is grounded on app/host/styles.go's Bubble Tea model idioms
// (a single-line textinput.Model driving a tea.Program) and its lipgloss
// table rendering, repurposed here to show breaker and connection status
// instead of key status rows. Query results are printed below the input as
// raw response text.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/shinydb/shinydb-go/internal/logging"
	"github.com/shinydb/shinydb-go/shinydb"
)

var (
	borderColor = lipgloss.AdaptiveColor{Light: "#6C6CFF", Dark: "#6C6CFF"}
	okColor     = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#9FF29A"}
	errColor    = lipgloss.AdaptiveColor{Light: "#8B0000", Dark: "#FF6B6B"}

	headerStyle  = lipgloss.NewStyle().Bold(true)
	statusOK     = lipgloss.NewStyle().Foreground(okColor).Bold(true)
	statusClosed = statusOK
	statusOpen   = lipgloss.NewStyle().Foreground(errColor).Bold(true)
	statusHalf   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#E5C07B"}).Bold(true)
)

type shellModel struct {
	client *shinydb.Client
	ti     textinput.Model

	lastOutput string
	lastErr    error
	quitting   bool
}

func newShellModel(client *shinydb.Client) shellModel {
	ti := textinput.New()
	ti.Placeholder = "orders.filter(status = \"active\").limit(10)"
	ti.Prompt = "shinydb> "
	ti.Focus()
	return shellModel{client: client, ti: ti}
}

func (m shellModel) Init() tea.Cmd { return textinput.Blink }

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.runQuery(m.ti.Value())
			m.ti.SetValue("")
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *shellModel) runQuery(src string) {
	if src == "" {
		return
	}
	resp, err := m.client.RunText(src)
	if err != nil {
		m.lastErr = err
		m.lastOutput = ""
		return
	}
	m.lastErr = nil
	m.lastOutput = string(resp.Data)
	if resp.DocumentID != uuid.Nil {
		m.lastOutput += fmt.Sprintf("\nid: %s (%s)", resp.DocumentID, base58.Encode(resp.DocumentID[:]))
	}
}

func (m shellModel) View() string {
	if m.quitting {
		return ""
	}

	rows := [][]string{
		{"breaker", m.breakerCell()},
		{"connected", fmt.Sprintf("%t", m.client.IsConnected())},
	}
	status := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Headers("field", "value").
		Rows(rows...)

	var body string
	switch {
	case m.lastErr != nil:
		body = statusOpen.Render("error: " + m.lastErr.Error())
	case m.lastOutput != "":
		body = m.lastOutput
	}

	return headerStyle.Render("ShinyDB shell") + "\n" +
		status.String() + "\n" +
		m.ti.View() + "\n" +
		body + "\n"
}

func (m shellModel) breakerCell() string {
	switch m.client.CircuitBreaker().State().String() {
	case "open":
		return statusOpen.Render("open")
	case "half_open":
		return statusHalf.Render("half_open")
	default:
		return statusClosed.Render("closed")
	}
}

func main() {
	host := envOr("SHINYDB_HOST", "127.0.0.1")
	port, _ := strconv.Atoi(envOr("SHINYDB_PORT", "9736"))

	logger := logging.New(logging.Config{Level: "info"})
	client := shinydb.New(host, port, logger)
	if err := client.Connect(); err != nil {
		fmt.Fprintln(os.Stderr, "connect failed:", err)
		os.Exit(1)
	}
	defer client.Disconnect()

	prog := tea.NewProgram(newShellModel(client))
	if _, err := prog.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "shell error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
