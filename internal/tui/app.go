// Package tui is the terminal front end: a connect page, a table list and
// one page per table where CSV files are loaded and columns searched.
package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
	"github.com/koustreak/tablescope/internal/schema"
	"github.com/koustreak/tablescope/internal/session"
)

// Backend is everything the pages need from the backend.
type Backend interface {
	session.Connector
	session.BulkInserter
	session.Searcher
	schema.Reader
}

var _ Backend = (*backend.Client)(nil)

// Options configure an App.
type Options struct {
	Backend    Backend
	Shell      *bridge.Shell
	Connect    session.ConnectConfig
	Extensions []string
	Tables     []string
	StartDir   string // where the file picker opens; cwd when empty
	StartPage  string // "/" when empty
	Log        *logger.Logger
}

// App is the main TUI application model.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// Dependencies
	shell   *bridge.Shell
	reader  schema.Reader
	connect *session.ConnectController
	intake  *session.Intake
	query   *session.QueryClient
	log     *logger.Logger

	tables   []string
	startDir string
	start    page

	width, height int
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	showHelp      bool

	// State
	page        page
	status      string
	statusErr   bool
	lastNotify  string
	connecting  bool
	loadingFile bool
	searching   bool

	tableCursor int        // tables page
	table       *tableView // table page
	picker      *pickerOverlay
}

// tableView is the state of one table page. It is dropped on navigation,
// taking the column selection with it.
type tableView struct {
	name    string
	info    *schema.TableInfo
	tracker *session.Tracker
	cursor  int
	loading bool
	err     error

	input       textinput.Model
	inputActive bool
	result      *backend.SearchResult
}

type pickerOverlay struct {
	fp     filepicker.Model
	filter bridge.FileFilter
	reply  chan<- string
}

// New creates the application model. Cancelling ctx aborts in-flight
// backend calls and an open file picker.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Backend == nil || opts.Shell == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "tui: backend and shell are required")
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	start := opts.StartPage
	if start == "" {
		start = PathConnect
	}
	p, err := parsePage(start)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(cursorStyle))

	return &App{
		ctx:      ctx,
		cancel:   cancel,
		shell:    opts.Shell,
		reader:   opts.Backend,
		connect:  session.NewConnectController(opts.Backend, opts.Shell, opts.Connect, log),
		intake:   session.NewIntake(opts.Shell, opts.Backend, opts.Extensions, log),
		query:    session.NewQueryClient(opts.Backend, log),
		log:      log.Named("tui"),
		tables:   append([]string(nil), opts.Tables...),
		startDir: opts.StartDir,
		start:    p,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  s,
	}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.open(a.start)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.picker != nil {
			a.picker.fp.SetHeight(a.pickerHeight())
		}
		return a, nil

	case tea.KeyMsg:
		if a.picker != nil {
			return a.updatePicker(msg)
		}
		return a.handleKey(msg)

	case navigateMsg:
		return a, a.open(msg.page)

	case notifyMsg:
		a.lastNotify = msg.text
		return a, nil

	case connectDone:
		a.connecting = false
		a.setStatus(msg.outcome.Message, msg.outcome.Err != nil)
		return a, nil

	case tableLoaded:
		t := a.table
		if t == nil || t.name != msg.table {
			return a, nil
		}
		t.loading = false
		if msg.err != nil {
			t.err = msg.err
			a.setStatus(session.Describe(msg.err, "Loading "+msg.table), true)
			return a, nil
		}
		t.err = nil
		t.info = msg.info
		t.tracker = session.NewTracker(msg.info.ColumnNames())
		t.cursor = 0
		return a, nil

	case loadDone:
		if msg.notice.Kind != session.NoticeBusy {
			a.loadingFile = false
		}
		a.setStatus(msg.notice.Message, noticeIsError(msg.notice.Kind))
		return a, nil

	case searchDone:
		if errs.IsStale(msg.err) {
			return a, nil
		}
		a.searching = false
		t := a.table
		if t == nil || t.name != msg.table {
			return a, nil
		}
		if msg.err != nil {
			t.result = nil
			a.setStatus(session.Describe(msg.err, "Search"), true)
			return a, nil
		}
		t.result = msg.outcome.Result
		a.setStatus(msg.outcome.Result.Message, false)
		return a, nil

	case pickRequest:
		return a, a.openPicker(msg)

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Internal messages of the embedded bubbles.
	if a.picker != nil {
		var cmd tea.Cmd
		a.picker.fp, cmd = a.picker.fp.Update(msg)
		return a, cmd
	}
	if t := a.table; t != nil && t.inputActive {
		var cmd tea.Cmd
		t.input, cmd = t.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.quit()
	}
	if t := a.table; t != nil && t.inputActive {
		return a.handleSearchInput(msg)
	}
	if a.showHelp {
		if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Back) {
			a.showHelp = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, a.quit()
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		a.help.ShowAll = true
		return a, nil
	}

	switch a.page.kind {
	case pageConnect:
		if key.Matches(msg, a.keys.Enter) {
			return a, a.startConnect()
		}
	case pageTables:
		return a, a.handleTablesKey(msg)
	case pageTable:
		return a, a.handleTableKey(msg)
	}
	return a, nil
}

func (a *App) handleTablesKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.tableCursor > 0 {
			a.tableCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.tableCursor < len(a.tables)-1 {
			a.tableCursor++
		}
	case key.Matches(msg, a.keys.Enter):
		if a.tableCursor < len(a.tables) {
			return a.open(page{kind: pageTable, table: a.tables[a.tableCursor]})
		}
	case key.Matches(msg, a.keys.Back):
		return a.open(page{kind: pageConnect})
	}
	return nil
}

func (a *App) handleTableKey(msg tea.KeyMsg) tea.Cmd {
	t := a.table
	switch {
	case key.Matches(msg, a.keys.Back):
		return a.open(page{kind: pageTables})
	case key.Matches(msg, a.keys.Refresh):
		return a.open(a.page)
	}

	// Nothing below applies until the page content has arrived.
	if t.info == nil || t.tracker == nil {
		return nil
	}
	if key.Matches(msg, a.keys.Load) {
		return a.startLoad()
	}
	switch {
	case key.Matches(msg, a.keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if t.cursor < t.tracker.Len()-1 {
			t.cursor++
		}
	case key.Matches(msg, a.keys.Select):
		if err := t.tracker.Select(t.cursor); err != nil {
			a.setStatus(err.Error(), true)
		}
	case key.Matches(msg, a.keys.Search):
		t.inputActive = true
		return t.input.Focus()
	}
	return nil
}

func (a *App) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := a.table
	switch msg.Type {
	case tea.KeyEsc:
		t.inputActive = false
		t.input.Blur()
		return a, nil
	case tea.KeyEnter:
		return a, a.startSearch()
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return a, cmd
}

// open replaces the current page. Page state does not survive navigation.
func (a *App) open(p page) tea.Cmd {
	a.page = p
	a.table = nil
	a.showHelp = false
	a.status, a.statusErr = "", false
	a.log.With().Str("page", p.path()).Logger().Debug("page opened")

	switch p.kind {
	case pageTables:
		if a.tableCursor >= len(a.tables) {
			a.tableCursor = 0
		}
	case pageTable:
		in := textinput.New()
		in.Placeholder = "search value"
		in.Prompt = "search> "
		in.CharLimit = 256
		a.table = &tableView{name: p.table, loading: true, input: in}
		return tea.Batch(a.loadTable(p.table), a.spin())
	}
	return nil
}

func (a *App) loadTable(table string) tea.Cmd {
	return func() tea.Msg {
		info, err := a.reader.InspectTable(a.ctx, table)
		return tableLoaded{table: table, info: info, err: err}
	}
}

func (a *App) startConnect() tea.Cmd {
	if a.connecting {
		return nil
	}
	spin := a.spin()
	a.connecting = true
	a.setStatus("Connecting…", false)
	return tea.Batch(func() tea.Msg {
		return connectDone{outcome: a.connect.Connect(a.ctx)}
	}, spin)
}

// startLoad loads into the table named by the page content, which may differ
// from the name the page was opened with.
func (a *App) startLoad() tea.Cmd {
	table := a.table.info.Name
	spin := a.spin()
	a.loadingFile = true
	return tea.Batch(func() tea.Msg {
		return loadDone{table: table, notice: a.intake.Load(a.ctx, table)}
	}, spin)
}

func (a *App) startSearch() tea.Cmd {
	t := a.table
	column := t.tracker.Column()
	if column == "" {
		a.setStatus("Select a column to search", true)
		return nil
	}
	value := t.input.Value()
	table := t.name

	spin := a.spin()
	a.searching = true
	return tea.Batch(func() tea.Msg {
		out, err := a.query.Search(a.ctx, table, column, value)
		return searchDone{table: table, outcome: out, err: err}
	}, spin)
}

func (a *App) openPicker(req pickRequest) tea.Cmd {
	if a.picker != nil {
		req.reply <- ""
		return nil
	}

	fp := filepicker.New()
	fp.CurrentDirectory = a.startDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}
	// esc closes the overlay instead of leaving the directory.
	fp.KeyMap.Back = key.NewBinding(key.WithKeys("h", "backspace", "left"), key.WithHelp("h", "back"))
	fp.ShowPermissions = false
	fp.SetHeight(a.pickerHeight())

	a.picker = &pickerOverlay{fp: fp, filter: req.filter, reply: req.reply}
	return fp.Init()
}

func (a *App) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c", "q":
		a.closePicker("")
		return a, nil
	}

	var cmd tea.Cmd
	a.picker.fp, cmd = a.picker.fp.Update(msg)
	if ok, path := a.picker.fp.DidSelectFile(msg); ok {
		a.closePicker(path)
		return a, nil
	}
	return a, cmd
}

func (a *App) closePicker(path string) {
	a.picker.reply <- path
	a.picker = nil
}

func (a *App) quit() tea.Cmd {
	if a.picker != nil {
		a.closePicker("")
	}
	a.cancel()
	return tea.Quit
}

// spin starts the spinner unless it is already running.
func (a *App) spin() tea.Cmd {
	if a.busy() {
		return nil
	}
	return a.spinner.Tick
}

func (a *App) busy() bool {
	if a.connecting || a.loadingFile || a.searching {
		return true
	}
	return a.table != nil && a.table.loading
}

func (a *App) setStatus(s string, isErr bool) {
	a.status, a.statusErr = s, isErr
}

func (a *App) pickerHeight() int {
	if a.height > 12 {
		return a.height - 8
	}
	return 10
}

func noticeIsError(k session.NoticeKind) bool {
	switch k {
	case session.NoticeResult, session.NoticeNoFile:
		return false
	default:
		return true
	}
}

func (p page) path() string {
	switch p.kind {
	case pageTables:
		return PathTables
	case pageTable:
		return TablePagePath(p.table)
	default:
		return PathConnect
	}
}
