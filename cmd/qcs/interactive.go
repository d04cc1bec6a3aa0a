package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/qcs-runtime/executable"
	"github.com/wippyai/qcs-runtime/manifest"
	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/result"
)

type interactiveModel struct {
	err      error
	exe      *executable.Executable
	job      *manifest.Job
	fields   []field
	inputs   []textinput.Model
	output   string
	runs     int
	focusIdx int
	state    modelState
}

// field is an editable input: a parameter region or the shot count.
type field struct {
	name   string
	hint   string
	length uint64
	shots  bool
}

type modelState int

const (
	stateEdit modelState = iota
	stateRunning
	stateShowResult
)

type runResultMsg struct {
	err    error
	output string
}

func newInteractiveModel(job *manifest.Job) (*interactiveModel, error) {
	exe, err := job.Executable()
	if err != nil {
		return nil, err
	}
	m := &interactiveModel{exe: exe, job: job, state: stateEdit}
	m.prepareInputs()
	return m, nil
}

// prepareInputs adds one input per declared region that is not read back,
// plus the shot count.
func (m *interactiveModel) prepareInputs() {
	prog := m.exe.Program()
	read := make(map[string]bool)
	for _, name := range m.exe.Readouts() {
		read[name] = true
	}
	for _, name := range prog.RegionNames() {
		region, _ := prog.Region(name)
		if read[name] || region.Type == ast.Bit {
			continue
		}
		m.fields = append(m.fields, field{
			name:   name,
			hint:   fmt.Sprintf("%s[%d]", region.Type, region.Length),
			length: region.Length,
		})
	}
	m.fields = append(m.fields, field{name: "shots", hint: "1-65535", shots: true})

	params := m.exe.Parameters()
	m.inputs = make([]textinput.Model, len(m.fields))
	for i, f := range m.fields {
		ti := textinput.New()
		ti.Placeholder = f.hint
		ti.Prompt = f.name + ": "
		ti.Width = 40
		if f.shots {
			ti.SetValue(strconv.Itoa(int(m.exe.Shots())))
		} else if vs, ok := params[f.name]; ok {
			ti.SetValue(formatRow(vs))
		}
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateEdit {
				return m, tea.Quit
			}

		case "enter":
			switch m.state {
			case stateEdit:
				if err := m.apply(); err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				m.state = stateRunning
				return m, m.run

			case stateShowResult:
				m.state = stateEdit
				m.output = ""
				m.err = nil
			}
			return m, nil

		case "tab", "down":
			if m.state == stateEdit && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "shift+tab", "up":
			if m.state == stateEdit && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + len(m.inputs) - 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateEdit
				m.output = ""
				m.err = nil
			}
		}

	case runResultMsg:
		m.runs++
		m.output = msg.output
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateEdit {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// apply copies the input values into the Executable.
func (m *interactiveModel) apply() error {
	for i, f := range m.fields {
		value := strings.TrimSpace(m.inputs[i].Value())
		if f.shots {
			n, err := strconv.ParseUint(value, 10, 16)
			if err != nil || n == 0 {
				return fmt.Errorf("shots must be between 1 and 65535")
			}
			m.exe.SetShots(uint16(n))
			continue
		}
		if value == "" {
			continue
		}
		fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
		if uint64(len(fields)) > f.length {
			return fmt.Errorf("%s takes at most %d values", f.name, f.length)
		}
		for idx, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", f.name, idx, err)
			}
			m.exe.SetParameter(f.name, idx, v)
		}
	}
	return nil
}

func (m *interactiveModel) run() tea.Msg {
	res := m.exe.Execute(context.Background(), m.job.Target)
	defer res.Drop()
	if res.Kind == result.KindError {
		return runResultMsg{err: res.Err}
	}
	return runResultMsg{output: render(res.Handle, m.exe.Readouts(), true)}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("QCS Runner"))
	b.WriteString(" ")
	b.WriteString(m.job.Target.String())
	if m.runs > 0 {
		fmt.Fprintf(&b, " (%d runs)", m.runs)
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateEdit:
		b.WriteString("Set parameters:\n\n")
		for i, input := range m.inputs {
			if i == m.focusIdx {
				b.WriteString(selectedStyle.Render(">"))
				b.WriteString(" ")
			} else {
				b.WriteString("  ")
			}
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(m.fields[i].hint))
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • ctrl+c quit"))

	case stateRunning:
		b.WriteString("Running...\n")

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(m.output)
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter edit • q quit"))
	}

	return b.String()
}

func runInteractive(job *manifest.Job) error {
	m, err := newInteractiveModel(job)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
