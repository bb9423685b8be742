package tui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nachoal/describe-go/tui/styles"
)

// DescribeFunc performs the request the spinner waits on
type DescribeFunc func(ctx context.Context) (map[string]any, error)

type resultMsg struct {
	result map[string]any
	err    error
}

// ProgressModel shows a spinner while one describe call is in flight
type ProgressModel struct {
	spinner spinner.Model
	title   string
	styles  *styles.Styles

	ctx    context.Context
	cancel context.CancelFunc
	run    DescribeFunc

	done   bool
	result map[string]any
	err    error
}

// NewProgressModel creates the spinner model. Cancelling with ctrl+c or esc
// cancels ctx for the in-flight call.
func NewProgressModel(ctx context.Context, title string, s *styles.Styles, run DescribeFunc) ProgressModel {
	if s == nil {
		s = styles.Plain()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	ctx, cancel := context.WithCancel(ctx)
	return ProgressModel{
		spinner: sp,
		title:   title,
		styles:  s,
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.call())
}

func (m ProgressModel) call() tea.Cmd {
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		result, err := run(ctx)
		return resultMsg{result: result, err: err}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.err = context.Canceled
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + " " + m.styles.Help.Render("(esc to cancel)") + "\n"
}

// Result returns the outcome once the model has finished
func (m ProgressModel) Result() (map[string]any, error) {
	return m.result, m.err
}

// RunWithSpinner runs fn while drawing a spinner on out
func RunWithSpinner(ctx context.Context, out io.Writer, title string, s *styles.Styles, fn DescribeFunc) (map[string]any, error) {
	p := tea.NewProgram(NewProgressModel(ctx, title, s, fn), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(ProgressModel).Result()
}
