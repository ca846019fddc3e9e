package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/poolsynth/pkg/dataset"
	"github.com/matzehuels/poolsynth/pkg/export"
	"github.com/matzehuels/poolsynth/pkg/observability"
)

// Progress styles
var (
	barDoneStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barTodoStyle  = lipgloss.NewStyle().Foreground(colorDim)
	splitActStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	splitStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	progDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

const barWidth = 30

// =============================================================================
// Messages
// =============================================================================

type splitStartMsg struct {
	split string
	count int
}

type frameMsg observability.FrameEvent

type splitDoneMsg observability.SplitSummary

type finishedMsg struct{ err error }

// =============================================================================
// ProgressModel - Generation progress view
// =============================================================================

// splitProgress is the live state of one split.
type splitProgress struct {
	plan     dataset.SplitPlan
	done     int
	resumed  int
	labels   int
	finished bool
	duration time.Duration
}

// ProgressModel is the bubbletea model that shows generation progress per
// split.
type ProgressModel struct {
	Splits   []*splitProgress
	Current  string
	Started  time.Time
	Err      error
	Finished bool
	Quit     bool
}

// newProgressModel creates a progress model for the planned splits. Empty
// splits are not shown.
func newProgressModel(plans []dataset.SplitPlan) ProgressModel {
	m := ProgressModel{Started: time.Now()}
	for _, p := range plans {
		if p.Count > 0 {
			m.Splits = append(m.Splits, &splitProgress{plan: p})
		}
	}
	return m
}

func (m ProgressModel) split(name string) *splitProgress {
	for _, s := range m.Splits {
		if s.plan.Split == name {
			return s
		}
	}
	return nil
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quit = true
			return m, tea.Quit
		}
	case splitStartMsg:
		m.Current = msg.split
	case frameMsg:
		if s := m.split(msg.Split); s != nil && msg.Err == nil {
			s.done++
			s.labels += msg.Labels
			if msg.Resumed {
				s.resumed++
			}
		}
	case splitDoneMsg:
		if s := m.split(msg.Split); s != nil {
			s.finished = true
			s.duration = msg.Duration
		}
	case finishedMsg:
		m.Finished = true
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Generating dataset"))
	b.WriteString("\n")
	b.WriteString(progDimStyle.Render("q quit (completed frames are kept)"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Splits))
	for _, s := range m.Splits {
		status := fmt.Sprintf("%d/%d", s.done, s.plan.Count)
		if s.resumed > 0 {
			status += fmt.Sprintf(" (%d resumed)", s.resumed)
		}
		elapsed := ""
		if s.finished {
			elapsed = s.duration.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{s.plan.Split, renderBar(s.done, s.plan.Count), status, fmt.Sprint(s.labels), elapsed})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Split", "Progress", "Frames", "Labels", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(m.Splits) {
				return lipgloss.NewStyle()
			}
			if m.Splits[row].plan.Split == m.Current && !m.Splits[row].finished {
				return splitActStyle
			}
			return splitStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(progDimStyle.Render(fmt.Sprintf("  elapsed %s", time.Since(m.Started).Round(time.Second))))
	b.WriteString("\n")
	return b.String()
}

// renderBar draws a fixed-width progress bar.
func renderBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = min(done*barWidth/total, barWidth)
	}
	return barDoneStyle.Render(strings.Repeat("█", filled)) + barTodoStyle.Render(strings.Repeat("░", barWidth-filled))
}

// =============================================================================
// Hooks bridge
// =============================================================================

// teaHooks forwards generation events to a running bubbletea program.
type teaHooks struct {
	prog *tea.Program
}

func newTeaHooks(p *tea.Program) *teaHooks { return &teaHooks{prog: p} }

func (h *teaHooks) OnSplitStart(_ context.Context, split string, count int) {
	h.prog.Send(splitStartMsg{split: split, count: count})
}

func (h *teaHooks) OnFrameComplete(_ context.Context, ev observability.FrameEvent) {
	h.prog.Send(frameMsg(ev))
}

func (h *teaHooks) OnSplitComplete(_ context.Context, s observability.SplitSummary) {
	h.prog.Send(splitDoneMsg(s))
}

// runWithProgress runs generate in the background while prog owns the
// terminal. Quitting the view cancels generation between frames.
func runWithProgress(prog *tea.Program, cancel context.CancelFunc, generate func() (*export.Generation, error)) (*export.Generation, error) {
	type result struct {
		manifest *export.Generation
		err      error
	}
	results := make(chan result, 1)
	go func() {
		manifest, err := generate()
		prog.Send(finishedMsg{err: err})
		results <- result{manifest, err}
	}()

	_, runErr := prog.Run()
	cancel()
	r := <-results
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && r.err == nil {
		return r.manifest, runErr
	}
	return r.manifest, r.err
}
