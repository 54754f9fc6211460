package picker

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bnema/wtfcopy/internal/transfer"
	"github.com/bnema/wtfcopy/internal/ui/progress"
	"github.com/bnema/wtfcopy/internal/ui/styles"
	"github.com/bnema/wtfcopy/internal/wow"
)

// Result is what a copy run reports back to the picker
type Result struct {
	// Notes are shown above the transcript (snapshot location, warnings)
	Notes      []string
	Transcript transfer.Transcript
	Err        error
}

// Options wires the picker to the rest of the application
type Options struct {
	// Copy performs a transfer for a ready selection
	Copy func(transfer.Selection) Result
	// Scan re-reads the installation
	Scan func() (*wow.Installation, error)
}

// stage is derived from which parts of the selection are filled in
type stage int

const (
	stageSourceVersion stage = iota
	stageSourceProfile
	stageDestinationVersion
	stageDestinationProfile
	stageConfirm
	stageCopying
	stageResult
)

// versionItem implements list.Item for bubbles/list
type versionItem struct {
	version wow.Version
	sources bool
}

func (i versionItem) Title() string { return i.version.DisplayName() }

func (i versionItem) Description() string {
	n := len(i.version.Profiles)
	if i.sources {
		n = len(i.version.SourceProfiles())
	}
	return fmt.Sprintf("%s | %d characters", i.version.Folder, n)
}

func (i versionItem) FilterValue() string {
	return i.version.DisplayName() + " " + i.version.Folder
}

type profileItem struct {
	profile wow.Profile
}

func (i profileItem) Title() string { return i.profile.String() }

func (i profileItem) Description() string {
	parts := []string{i.profile.Account}
	if badge := styles.FormatSavedVariablesBadge(i.profile.HasSavedVariables); badge != "" {
		parts = append(parts, badge)
	}
	return strings.Join(parts, " | ")
}

func (i profileItem) FilterValue() string {
	return i.profile.Character + " " + i.profile.Realm + " " + i.profile.Account
}

// KeyMap defines keyboard shortcuts
type KeyMap struct {
	Select           key.Binding
	Back             key.Binding
	ResetSource      key.Binding
	ResetDestination key.Binding
	Rescan           key.Binding
	Quit             key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		ResetSource: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "reset source"),
		),
		ResetDestination: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "reset destination"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "rescan"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model walks the user through source and destination selection, then
// runs the copy and shows its transcript
type Model struct {
	opts      Options
	selection transfer.Selection
	list      list.Model
	spinner   spinner.Model
	keys      KeyMap

	stage         stage
	width, height int

	result   *Result
	errorMsg string
}

// Messages
type copyDoneMsg struct {
	result Result
}

type rescannedMsg struct {
	installation *wow.Installation
	err          error
}

// NewModel creates a picker over an already scanned installation
func NewModel(inst *wow.Installation, opts Options) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(styles.Primary).
		BorderForeground(styles.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(styles.Muted).
		BorderForeground(styles.Primary)

	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Styles.Title = styles.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	m := Model{
		opts:      opts,
		selection: transfer.NewSelection(inst),
		list:      l,
		spinner:   s,
		keys:      DefaultKeyMap(),
		width:     80,
		height:    24,
	}
	m.refresh()
	return m
}

// Selection returns the current selection
func (m Model) Selection() transfer.Selection {
	return m.selection
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// selectionStage maps the filled-in parts of a selection to the next question
func selectionStage(sel transfer.Selection) stage {
	if _, ok := sel.SourceVersion(); !ok {
		return stageSourceVersion
	}
	if _, ok := sel.SourceProfile(); !ok {
		return stageSourceProfile
	}
	if _, ok := sel.DestinationVersion(); !ok {
		return stageDestinationVersion
	}
	if _, ok := sel.DestinationProfile(); !ok {
		return stageDestinationProfile
	}
	return stageConfirm
}

// refresh recomputes the stage and rebuilds the list for it
func (m *Model) refresh() {
	m.stage = selectionStage(m.selection)
	m.list.ResetFilter()

	var items []list.Item
	inst := m.selection.Installation()

	switch m.stage {
	case stageSourceVersion:
		m.list.Title = "Copy from: version"
		for _, v := range inst.Versions {
			if len(v.SourceProfiles()) > 0 {
				items = append(items, versionItem{version: v, sources: true})
			}
		}
	case stageSourceProfile:
		v, _ := m.selection.SourceVersion()
		m.list.Title = "Copy from: " + v.DisplayName() + " character"
		for _, p := range v.SourceProfiles() {
			items = append(items, profileItem{profile: p})
		}
	case stageDestinationVersion:
		m.list.Title = "Copy to: version"
		for _, v := range inst.Versions {
			items = append(items, versionItem{version: v})
		}
	case stageDestinationProfile:
		v, _ := m.selection.DestinationVersion()
		m.list.Title = "Copy to: " + v.DisplayName() + " character"
		for _, p := range v.Profiles {
			items = append(items, profileItem{profile: p})
		}
	}

	m.list.SetItems(items)
	m.list.Select(0)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := styles.App.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.updateKeys(msg)

	case copyDoneMsg:
		m.result = &msg.result
		m.stage = stageResult
		return m, nil

	case rescannedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.result = nil
		m.selection = transfer.NewSelection(msg.installation)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// a running copy ignores everything but quit so requests stay serialized
	if m.stage == stageCopying {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ResetSource):
		m.selection = m.selection.ResetSource()
		m.result = nil
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ResetDestination):
		m.selection = m.selection.ResetDestination()
		m.result = nil
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Rescan):
		if m.opts.Scan == nil {
			return m, nil
		}
		return m, m.rescan

	case key.Matches(msg, m.keys.Back):
		m.back()
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.choose()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// back clears the most recently chosen part of the selection
func (m *Model) back() {
	if m.stage == stageResult {
		m.result = nil
		m.stage = stageConfirm
		return
	}

	sel := m.selection
	if v, ok := sel.DestinationVersion(); ok {
		if _, ok := sel.DestinationProfile(); ok {
			m.selection = sel.WithDestinationVersion(v)
		} else {
			m.selection = sel.ResetDestination()
		}
	} else if v, ok := sel.SourceVersion(); ok {
		if _, ok := sel.SourceProfile(); ok {
			m.selection = sel.WithSourceVersion(v)
		} else {
			m.selection = sel.ResetSource()
		}
	}
	m.refresh()
}

func (m Model) choose() (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageConfirm:
		if m.opts.Copy == nil || !m.selection.IsReady() {
			return m, nil
		}
		m.stage = stageCopying
		return m, tea.Batch(m.spinner.Tick, m.runCopy(m.selection))

	case stageResult:
		return m, nil
	}

	switch item := m.list.SelectedItem().(type) {
	case versionItem:
		if m.stage == stageSourceVersion {
			m.selection = m.selection.WithSourceVersion(item.version)
		} else {
			m.selection = m.selection.WithDestinationVersion(item.version)
		}
	case profileItem:
		if m.stage == stageSourceProfile {
			m.selection = m.selection.WithSourceProfile(item.profile)
		} else {
			m.selection = m.selection.WithDestinationProfile(item.profile)
		}
	default:
		return m, nil
	}

	m.refresh()
	return m, nil
}

// Commands

func (m Model) runCopy(sel transfer.Selection) tea.Cmd {
	run := m.opts.Copy
	return func() tea.Msg {
		return copyDoneMsg{result: run(sel)}
	}
}

func (m Model) rescan() tea.Msg {
	inst, err := m.opts.Scan()
	return rescannedMsg{installation: inst, err: err}
}

// View renders the UI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(m.viewSummary())
	s.WriteString("\n")

	switch m.stage {
	case stageConfirm:
		s.WriteString(styles.Highlighted.Render("Ready to copy.") + " Press enter to start.\n")
	case stageCopying:
		s.WriteString(m.spinner.View() + " Copying settings...\n")
	case stageResult:
		s.WriteString(m.viewResult())
	default:
		if len(m.list.Items()) == 0 {
			s.WriteString(styles.FormatWarning("Nothing to choose from here") + "\n")
		} else {
			s.WriteString(m.list.View() + "\n")
		}
	}

	if m.errorMsg != "" {
		s.WriteString("\n" + styles.FormatError(m.errorMsg) + "\n")
	}

	s.WriteString("\n" + styles.Help.Render("enter:select  esc:back  S:reset source  D:reset destination  ctrl+r:rescan  q:quit"))

	return styles.App.Render(s.String())
}

func (m Model) viewSummary() string {
	side := func(label string, v wow.Version, vok bool, p wow.Profile, pok bool) string {
		text := styles.MutedText.Render("-")
		if vok {
			text = styles.FormatVersion(v.DisplayName(), v.Folder)
			if pok {
				text += " " + styles.Arrow.String() + " " + styles.FormatProfile(p.Character, p.Realm) +
					" " + styles.AccountName.Render("("+p.Account+")")
			}
		}
		return fmt.Sprintf("%-6s %s\n", label, text)
	}

	sv, svok := m.selection.SourceVersion()
	sp, spok := m.selection.SourceProfile()
	dv, dvok := m.selection.DestinationVersion()
	dp, dpok := m.selection.DestinationProfile()

	return styles.Title.Render("wtfcopy") + "\n\n" +
		side("From:", sv, svok, sp, spok) +
		side("To:", dv, dvok, dp, dpok)
}

func (m Model) viewResult() string {
	if m.result == nil {
		return ""
	}

	var s strings.Builder
	for _, note := range m.result.Notes {
		s.WriteString(progress.FormatStep(progress.StatePending, note) + "\n")
	}
	s.WriteString(progress.RenderTranscript(transfer.WithOutcome(m.result.Transcript, m.result.Err)))

	failures := m.result.Transcript.Failures()
	switch {
	case m.result.Err != nil:
		s.WriteString("\n" + styles.FormatError("Copy aborted") + "\n")
	case failures > 0:
		s.WriteString("\n" + styles.FormatWarning(fmt.Sprintf("Copy finished with %d item(s) not copied", failures)) + "\n")
	default:
		s.WriteString("\n" + styles.FormatSuccess("Copy finished") + "\n")
	}
	return s.String()
}

// Run starts the picker on the terminal. The UI renders on stderr so
// stdout stays free for the final transcript.
func Run(inst *wow.Installation, opts Options) (Model, error) {
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))

	p := tea.NewProgram(NewModel(inst, opts), tea.WithOutput(os.Stderr), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}

// LastResult returns the result of the most recent copy, if any
func (m Model) LastResult() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}
