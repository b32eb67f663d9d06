// Package progress renders a terminal progress bar while an encode run
// proceeds, for CLI invocations with --progress set (SPEC_FULL.md §1.1, §2).
// It is purely cosmetic: codec.Encode runs to completion regardless of
// whether a bar is attached.
package progress

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var label = lipgloss.NewStyle().Bold(true)

// Bar drives a bubbletea program showing a single determinate progress bar.
// Update sends fractional completion in [0,1]; Finish tears the program down.
type Bar struct {
	program *tea.Program
	updates chan float64
	done    chan struct{}
}

type model struct {
	bar     progress.Model
	percent float64
	updates chan float64
	title   string
}

type tickMsg float64

func waitForUpdate(updates chan float64) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return tickMsg(v)
	}
}

func (m model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.percent = float64(msg)
		if m.percent >= 1 {
			return m, tea.Quit
		}
		return m, waitForUpdate(m.updates)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	return fmt.Sprintf("%s\n%s\n", label.Render(m.title), m.bar.ViewAs(m.percent))
}

// Start launches the progress bar for a run labeled title. Call Update to
// report fractional completion and Finish when the run ends.
func Start(title string) *Bar {
	updates := make(chan float64, 8)
	m := model{
		bar:     progress.New(progress.WithDefaultGradient()),
		updates: updates,
		title:   title,
	}
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()
	return &Bar{program: p, updates: updates, done: done}
}

// Update reports fractional completion in [0,1].
func (b *Bar) Update(fraction float64) {
	select {
	case b.updates <- fraction:
	default:
	}
}

// Finish reports completion and waits for the bar to tear down.
func (b *Bar) Finish() {
	b.Update(1)
	close(b.updates)
	<-b.done
}
