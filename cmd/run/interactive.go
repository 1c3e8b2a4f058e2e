package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/virtfs/memfs"
	"github.com/wippyai/virtfs/vfs"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxView caps how much of a file the viewer reads.
const maxView = 64 << 10

type modelState int

const (
	stateBrowse modelState = iota
	stateView
	statePrompt
)

// frame is one level of the directory stack.
type frame struct {
	dir  vfs.Dir
	name string
}

type interactiveModel struct {
	err      error
	fs       *memfs.Filesystem
	stack    []frame
	entries  []entry
	prompt   textinput.Model
	content  string
	status   string
	selected int
	state    modelState
}

func newInteractiveModel(fs *memfs.Filesystem) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "mkdir NAME | touch NAME | write NAME TEXT | rm NAME"
	ti.Prompt = ": "
	ti.Width = 60
	return &interactiveModel{
		fs:     fs,
		stack:  []frame{{dir: fs.Root(), name: ""}},
		prompt: ti,
		state:  stateBrowse,
	}
}

func (m *interactiveModel) cwd() vfs.Dir {
	return m.stack[len(m.stack)-1].dir
}

func (m *interactiveModel) cwdPath() string {
	var parts []string
	for _, f := range m.stack[1:] {
		parts = append(parts, f.name)
	}
	return "/" + strings.Join(parts, "/")
}

func (m *interactiveModel) refresh() {
	entries, err := listDir(m.cwd())
	m.err = err
	m.entries = entries
	if m.selected >= len(m.entries) {
		m.selected = max(len(m.entries)-1, 0)
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	m.refresh()
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == statePrompt {
		switch key.String() {
		case "esc":
			m.state = stateBrowse
			m.prompt.Blur()
			m.prompt.SetValue("")
			return m, nil
		case "enter":
			m.status, m.err = m.execute(m.prompt.Value())
			m.state = stateBrowse
			m.prompt.Blur()
			m.prompt.SetValue("")
			m.refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.state == stateBrowse && m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.state == stateBrowse && m.selected < len(m.entries)-1 {
			m.selected++
		}

	case "enter", "right", "l":
		if m.state == stateBrowse && len(m.entries) > 0 {
			m.open(m.entries[m.selected])
		}

	case "esc", "backspace", "left", "h":
		switch m.state {
		case stateView:
			m.state = stateBrowse
			m.content = ""
		case stateBrowse:
			if len(m.stack) > 1 {
				m.stack = m.stack[:len(m.stack)-1]
				m.selected = 0
				m.refresh()
			}
		}

	case ":":
		if m.state == stateBrowse {
			m.state = statePrompt
			m.status = ""
			return m, m.prompt.Focus()
		}
	}

	return m, nil
}

func (m *interactiveModel) open(e entry) {
	m.status, m.err = "", nil
	if e.typ == vfs.FileTypeDirectory {
		sub, err := m.cwd().OpenDir(false, e.name)
		if err != nil {
			m.err = err
			return
		}
		m.stack = append(m.stack, frame{dir: sub, name: e.name})
		m.selected = 0
		m.refresh()
		return
	}

	f, err := m.cwd().OpenFile(false, e.name, 0, true, false, 0)
	if err != nil {
		m.err = err
		return
	}
	buf := make([]byte, min(e.size, maxView))
	n, err := f.ReadVectoredAt([][]byte{buf}, 0)
	if err != nil {
		m.err = err
		return
	}
	m.content = string(buf[:n])
	if e.size > maxView {
		m.content += fmt.Sprintf("\n... (%d more bytes)", e.size-maxView)
	}
	m.state = stateView
}

// execute runs a prompt command against the current directory.
func (m *interactiveModel) execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("usage: mkdir|touch|write|rm NAME")
	}
	cmd, name := fields[0], fields[1]
	dir := m.cwd()

	switch cmd {
	case "mkdir":
		if err := dir.CreateDir(name); err != nil {
			return "", err
		}
		return "created directory " + name, nil

	case "touch":
		if _, err := dir.OpenFile(false, name, vfs.OFlagCreate, false, true, 0); err != nil {
			return "", err
		}
		return "touched " + name, nil

	case "write":
		text := strings.Join(fields[2:], " ") + "\n"
		f, err := dir.OpenFile(false, name, vfs.OFlagCreate, false, true, 0)
		if err != nil {
			return "", err
		}
		if err := f.SetFilestatSize(0); err != nil {
			return "", err
		}
		n, err := f.WriteVectoredAt([][]byte{[]byte(text)}, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("wrote %d bytes to %s", n, name), nil

	case "rm":
		st, err := dir.GetPathFilestat(name, false)
		if err != nil {
			return "", err
		}
		if st.FileType == vfs.FileTypeDirectory {
			err = dir.RemoveDir(name)
		} else {
			err = dir.UnlinkFile(name)
		}
		if err != nil {
			return "", err
		}
		return "removed " + name, nil
	}
	return "", fmt.Errorf("unknown command %q", cmd)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("virtfs"))
	b.WriteString(" ")
	b.WriteString(m.cwdPath())
	b.WriteString("\n\n")

	switch m.state {
	case stateView:
		b.WriteString(fileStyle.Render(m.entries[m.selected].name))
		b.WriteString("\n\n")
		b.WriteString(m.content)
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
		return b.String()

	default:
		if len(m.entries) == 0 {
			b.WriteString(helpStyle.Render("(empty)"))
			b.WriteString("\n")
		}
		for i, e := range m.entries {
			line := m.formatEntry(e)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(resultStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.state == statePrompt {
		b.WriteString(m.prompt.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter run • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • ← back • : command • q quit"))
	}
	return b.String()
}

func (m *interactiveModel) formatEntry(e entry) string {
	if e.typ == vfs.FileTypeDirectory {
		return dirStyle.Render(e.name + "/")
	}
	return fileStyle.Render(e.name) + helpStyle.Render(fmt.Sprintf("  %d bytes", e.size))
}

func runInteractive(fs *memfs.Filesystem) error {
	p := tea.NewProgram(newInteractiveModel(fs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
