package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"bmctest/internal/domain"
	"bmctest/internal/report"
	"bmctest/internal/storage"
)

// FailureViewer displays non-passing checks of a saved report in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
	logger  *zap.Logger
	out     io.Writer
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(st storage.Storage, logger *zap.Logger, out io.Writer) *FailureViewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailureViewer{
		storage: st,
		logger:  logger,
		out:     out,
	}
}

// failureSet holds the viewed cases with their resolved marks
type failureSet struct {
	runID    string
	failures []domain.Failure
}

func newFailureSet(doc *report.Document, resolved map[string]bool) *failureSet {
	failures := doc.NonPassing()
	for i := range failures {
		failures[i].Resolved = resolved[failures[i].Key()]
	}
	return &failureSet{runID: doc.ID, failures: failures}
}

func (fs *failureSet) toggle(index int) {
	if index < 0 || index >= len(fs.failures) {
		return
	}
	fs.failures[index].Resolved = !fs.failures[index].Resolved
}

func (fs *failureSet) unresolved() int {
	count := 0
	for _, f := range fs.failures {
		if !f.Resolved {
			count++
		}
	}
	return count
}

func (fs *failureSet) resolvedMap() map[string]bool {
	m := make(map[string]bool)
	for _, f := range fs.failures {
		if f.Resolved {
			m[f.Key()] = true
		}
	}
	return m
}

// View displays the non-passing checks of doc
func (fv *FailureViewer) View(doc *report.Document) error {
	if len(doc.NonPassing()) == 0 {
		green.Fprintln(fv.output(), "✓ No failing checks found!")
		return nil
	}

	resolved, err := fv.storage.LoadResolved(doc.ID)
	if err != nil {
		fv.logger.Warn("Could not load resolved marks", zap.Error(err))
		resolved = nil
	}
	set := newFailureSet(doc, resolved)

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i := range set.failures {
		list.AddItem(listItemText(set.failures[i], i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(headerText(len(set.failures), set.unresolved()))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(set.failures) {
			statsView.SetText(formatFailureStats(set.failures[index], set.runID))
			detailsView.SetText(formatFailureDetails(set.failures[index]))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r', 'R':
				index := list.GetCurrentItem()
				set.toggle(index)
				if index >= 0 && index < len(set.failures) {
					list.SetItemText(index, listItemText(set.failures[index], index), "")
				}
				updateHeader()
				updateDetails()
				if err := fv.storage.SaveResolved(set.runID, set.resolvedMap()); err != nil {
					fv.logger.Warn("Could not save resolved marks", zap.Error(err))
				}
				return nil
			case 'q':
				app.Stop()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func (fv *FailureViewer) output() io.Writer {
	if fv.out == nil {
		return color.Output
	}
	return fv.out
}

func headerText(total, unresolved int) string {
	return fmt.Sprintf(" Failing checks (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, q or Ctrl+C exit ", total, unresolved)
}

func statusTag(s domain.Status) string {
	switch s {
	case domain.StatusSkipped:
		return "[yellow]"
	case domain.StatusError:
		return "[orange]"
	}
	return "[red]"
}

// listItemText formats one entry of the left-hand list
func listItemText(f domain.Failure, index int) string {
	name := tview.Escape(f.Name)
	if f.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s%s[white] %s", index+1, statusTag(f.Status), f.Status, name)
}

// formatFailureDetails formats a case for the details pane using tview color tags
func formatFailureDetails(f domain.Failure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s✗ %s: %s[white]\n\n", statusTag(f.Status), f.Status, tview.Escape(f.Name))
	fmt.Fprintf(&b, "[cyan]Suite:[white] %s\n", tview.Escape(f.Suite))
	fmt.Fprintf(&b, "[cyan]Duration:[white] %.3fs\n", f.Seconds)
	if f.Resolved {
		b.WriteString("[gray]Marked as resolved[white]\n")
	}
	b.WriteString("\n")

	if f.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(f.Message))
	}
	return b.String()
}

// formatFailureStats formats the header line above the details pane
func formatFailureStats(f domain.Failure, runID string) string {
	line := fmt.Sprintf("[cyan]case:[white] [yellow]%s[white]/[yellow]%s[white]", tview.Escape(f.Suite), tview.Escape(f.Name))
	if runID != "" {
		line += fmt.Sprintf("  [cyan]run:[white] %s", runID)
	}
	return line + "\n"
}
