package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"metagrip/internal/config"
	"metagrip/internal/domain"
	"metagrip/internal/eventbus"
	"metagrip/internal/ui/input"
	inputtypes "metagrip/internal/ui/input/types"
	"metagrip/internal/ui/services/drafts"
	"metagrip/internal/ui/services/fastaction"
	"metagrip/internal/ui/services/navigation"
	"metagrip/internal/ui/services/querysync"
	"metagrip/internal/ui/services/splash"
	"metagrip/internal/ui/views"
)

// API is everything the browser needs from the platform
type API interface {
	querysync.Searcher
	fastaction.StatusSource
	fastaction.Actor
	splash.Preferences
	drafts.Source
}

// Options configures a Model
type Options struct {
	Config   *config.Config
	API      API
	Bus      eventbus.EventBus
	Logger   *zap.Logger
	Location string        // initial location, e.g. "?q=purch&page=2"
	KeyFunc  func() string // entity key generator, uuid when nil
}

// Model represents the UI state
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	bus    eventbus.EventBus
	logger *zap.Logger
	send   func(tea.Msg)

	// Services
	query   *querysync.Service
	actions *fastaction.Service
	splash  *splash.Service
	drafts  *drafts.Service
	nav     *navigation.Service

	inputHandler *input.Handler
	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
	metrics      querysync.Metrics

	width         int
	height        int
	location      string
	lastTotal     int
	sortIndex     int
	filterIndex   int
	statusMessage string
	showHelp      bool
	cursorToEnd   bool // land on the last card of the next result page
	quitting      bool
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics := querysync.Metrics{
		CardWidth:         cfg.Layout.CardWidth,
		CardHeight:        cfg.Layout.CardHeight,
		HorizontalPadding: cfg.Layout.HorizontalPadding,
		VerticalPadding:   cfg.Layout.VerticalPadding,
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())
	poller := fastaction.NewPoller(opts.API, cfg.UISettings.StatusPollInterval, logger)

	return &Model{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		bus:    opts.Bus,
		logger: logger.Named("ui"),
		query: querysync.NewService(opts.API, opts.Bus, querysync.Options{
			Namespace: cfg.Server.Namespace,
			Metrics:   metrics,
			Logger:    logger,
			KeyFunc:   opts.KeyFunc,
		}),
		actions: fastaction.NewService(poller, opts.API, opts.Bus, logger),
		splash: splash.NewService(opts.API, splash.Settings{
			StandaloneSDK: cfg.UISettings.StandaloneSDK,
			Enterprise:    cfg.UISettings.Enterprise,
		}, opts.Bus, logger),
		drafts:       drafts.NewService(opts.API, logger),
		nav:          navigation.NewService(),
		inputHandler: input.New(),
		renderer:     views.NewRenderer(),
		helpRenderer: NewHelpRenderer(),
		spinner:      sp,
		help:         help.New(),
		keys:         newKeyMap(),
		metrics:      metrics,
		location:     opts.Location,
	}
}

// SetProgram routes status polls and other background results to p
func (m *Model) SetProgram(p *tea.Program) {
	m.send = p.Send
}

// Location returns the serialized browse state
func (m *Model) Location() string {
	return m.query.Location()
}

// Init mounts the browser and schedules the splash check
func (m *Model) Init() tea.Cmd {
	req := m.query.Mount(m.location)
	return tea.Batch(
		m.spinner.Tick,
		m.runSearch(req),
		tea.Tick(m.cfg.UISettings.SplashDelay, func(time.Time) tea.Msg {
			return splashDelayMsg{}
		}),
	)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.nav.SetGrid(m.metrics.Columns(m.width), len(m.query.Entities()))
		if req, ok := m.query.Resize(msg.Width, msg.Height); ok {
			return m, m.runSearch(req)
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case searchResultMsg:
		m.applyOutcome(msg.outcome)
		return m, nil

	case statusMsg:
		m.actions.OnStatus(msg.key, msg.status)
		m.syncConfirmMode()
		return m, nil

	case actionDoneMsg:
		m.actions.Complete(msg.key, msg.action, msg.err)
		return m, nil

	case splashDelayMsg:
		ctx := m.ctx
		return m, func() tea.Msg {
			return splashInitMsg{visible: m.splash.Check(ctx)}
		}

	case splashInitMsg:
		if msg.visible && !m.quitting {
			m.splash.Show(true)
			m.showHelp = false
			m.inputHandler.SetMode(inputtypes.ModeSplash, m.inputContext())
		}
		return m, nil

	case prefsSavedMsg:
		m.splash.Saved(msg.err)
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Could not save preference: %v", msg.err)
		}
		return m, nil

	case draftsLoadedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Could not load ETL applications: %v", msg.err)
			return m, nil
		}
		return m, showInPager("ETL applications", RenderETLTable(msg.apps))

	case pagerDoneMsg:
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.String("title", msg.title), zap.Error(msg.err))
			m.statusMessage = fmt.Sprintf("Pager failed: %v", msg.err)
		}
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.inputHandler.Update(msg)
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	entities := m.query.Entities()
	badges := make(map[string]*views.ProgramBadge)
	for _, e := range entities {
		if a := m.actions.Action(e.Key); a != nil {
			badges[e.Key] = &views.ProgramBadge{
				Status:  a.Status,
				Loading: a.Loading(),
				Error:   a.ErrorMessage != "",
			}
		}
	}

	state := views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Columns:       m.metrics.Columns(m.width),
		CardW:         m.metrics.CardWidth,
		CardH:         m.metrics.CardHeight,
		Entities:      entities,
		Badges:        badges,
		Selected:      m.nav.GetCursor(),
		Query:         m.query.State(),
		Location:      m.query.Location(),
		Namespace:     m.query.Namespace(),
		Page:          m.query.State().Page,
		NumPages:      m.query.NumPages(),
		Loading:       m.query.Phase() == querysync.PhaseLoading,
		Errored:       m.query.Errored(),
		Spinner:       m.spinner.View(),
		StatusMessage: m.statusMessage,
		InputPrompt:   m.inputHandler.Prompt(),
		SortIndex:     m.sortIndex,
		FilterIndex:   m.filterIndex,
		Help:          m.help,
		Keys:          m.keys,
	}
	if !state.Errored {
		state.Total = m.lastTotal
	}

	switch m.inputHandler.CurrentMode() {
	case inputtypes.ModeSearch:
		state.InputMode = "search"
	case inputtypes.ModeLocation:
		state.InputMode = "location"
	case inputtypes.ModeSort:
		state.InputMode = "sort"
	case inputtypes.ModeFilter:
		state.InputMode = "filter"
	}
	if ti := m.inputHandler.TextInput(); ti != nil {
		state.TextInput = ti.View()
	}

	if _, a := m.actions.OpenModal(); a != nil {
		state.Modal = &views.ModalState{
			Title:    "Program " + a.EntityID,
			Question: a.ConfirmationText(),
			Error:    a.ErrorMessage,
			Detail:   a.ExtendedMessage,
			Loading:  a.Loading(),
		}
	}
	if m.splash.Visible() {
		state.Splash = &views.SplashState{
			DontShow:  m.splash.DontShow(),
			ShowIntro: m.splash.ShowIntro(),
		}
	}
	if m.showHelp {
		state.Overlay = m.helpRenderer.RenderHelpContent()
	}

	return m.renderer.Render(state)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		case "P":
			m.showHelp = false
			return showInPager("metagrip help", m.helpRenderer.RenderHelpContent())
		}
		return nil
	}

	m.statusMessage = ""
	actions, cmd := m.inputHandler.HandleKey(msg, m.inputContext())
	cmds := []tea.Cmd{cmd}
	for _, action := range actions {
		cmds = append(cmds, m.processAction(action))
	}
	return tea.Batch(cmds...)
}

func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	m.logger.Debug("action", zap.String("type", action.Type()))

	switch a := action.(type) {
	case inputtypes.NavigateAction:
		switch m.nav.Navigate(navigation.Direction(a.Direction)) {
		case navigation.EdgeNext:
			return m.changePage(m.query.State().Page+1, false)
		case navigation.EdgePrev:
			return m.changePage(m.query.State().Page-1, true)
		}

	case inputtypes.PageAction:
		return m.changePage(a.Page, false)

	case inputtypes.BackAction:
		if req, ok := m.query.Back(); ok {
			return m.runSearch(req)
		}

	case inputtypes.SubmitTextAction:
		switch a.Mode {
		case inputtypes.ModeSearch:
			return m.runSearch(m.query.OnSearchTextChange(a.Text))
		case inputtypes.ModeLocation:
			return m.runSearch(m.query.OnLocationChange(a.Text))
		}

	case inputtypes.SortByAction:
		if req, ok := m.query.OnSortChange(a.Spec); ok {
			return m.runSearch(req)
		}

	case inputtypes.UpdateSortIndexAction:
		m.sortIndex = a.Index

	case inputtypes.ToggleFilterAction:
		req, ok := m.query.OnFilterToggle(a.Category)
		if !ok {
			m.statusMessage = "At least one category must stay selected"
			return nil
		}
		return m.runSearch(req)

	case inputtypes.UpdateFilterIndexAction:
		m.filterIndex = a.Index

	case inputtypes.OpenProgramModalAction:
		if e, ok := m.currentEntity(); ok {
			if _, open := m.actions.OpenModal(); open == nil {
				m.actions.ToggleModal(e.Key)
			}
		}
		m.syncConfirmMode()

	case inputtypes.ConfirmProgramAction:
		key, _ := m.actions.OpenModal()
		ref, act, ok := m.actions.Begin(key)
		if !ok {
			return nil
		}
		ctx := m.ctx
		return func() tea.Msg {
			return actionDoneMsg{key: key, action: act, err: m.actions.Run(ctx, ref, act)}
		}

	case inputtypes.CloseProgramModalAction:
		if key, a := m.actions.OpenModal(); a != nil {
			m.actions.ToggleModal(key)
		}

	case inputtypes.OpenDetailAction:
		e, ok := m.currentEntity()
		if !ok {
			return nil
		}
		var status domain.ProgramStatus
		if a := m.actions.Action(e.Key); a != nil {
			status = a.Status
		}
		content, err := RenderEntityDetail(e, status)
		if err != nil {
			m.statusMessage = err.Error()
			return nil
		}
		return showInPager(e.Title(), content)

	case inputtypes.OpenDraftsAction:
		ctx, ns := m.ctx, m.query.Namespace()
		m.statusMessage = "Loading ETL applications..."
		return func() tea.Msg {
			apps, err := m.drafts.Load(ctx, ns)
			return draftsLoadedMsg{apps: apps, err: err}
		}

	case inputtypes.SplashToggleDontShowAction:
		m.splash.ToggleDontShow()

	case inputtypes.SplashToggleIntroAction:
		m.splash.ToggleIntro()

	case inputtypes.SplashCloseAction:
		ctx := m.ctx
		dontShow := m.splash.Hide()
		return func() tea.Msg {
			return prefsSavedMsg{err: m.splash.Persist(ctx, dontShow)}
		}

	case inputtypes.RefreshAction:
		return m.runSearch(m.query.OnLocationChange(m.query.Location()))

	case inputtypes.ToggleHelpAction:
		m.showHelp = !m.showHelp

	case inputtypes.QuitAction:
		return m.quit()
	}

	return nil
}

func (m *Model) changePage(page int, toEnd bool) tea.Cmd {
	req, ok := m.query.OnPageChange(page)
	if !ok {
		return nil
	}
	m.cursorToEnd = toEnd
	return m.runSearch(req)
}

func (m *Model) runSearch(req querysync.Request) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return searchResultMsg{outcome: m.query.RunSearch(ctx, req)}
	}
}

// applyOutcome folds a search result into the page and restarts status
// polls for the program cards now on screen
func (m *Model) applyOutcome(out querysync.Outcome) {
	if !m.query.Apply(out) {
		return
	}
	if out.Err == nil {
		m.lastTotal = out.Total
	}

	entities := m.query.Entities()
	m.actions.Track(m.ctx, entities, m.deliverStatus)
	m.nav.SetGrid(m.metrics.Columns(m.width), len(entities))
	if m.cursorToEnd {
		m.nav.Navigate(navigation.DirectionEnd)
	} else {
		m.nav.MoveToIndex(0)
	}
	m.cursorToEnd = false
	m.syncConfirmMode()
}

// deliverStatus runs on poll goroutines
func (m *Model) deliverStatus(key string, status domain.ProgramStatus) {
	if m.send != nil {
		m.send(statusMsg{key: key, status: status})
	}
}

// syncConfirmMode leaves the confirm mode once no modal is open
func (m *Model) syncConfirmMode() {
	if m.inputHandler.CurrentMode() != inputtypes.ModeConfirm {
		return
	}
	if _, a := m.actions.OpenModal(); a == nil {
		m.inputHandler.SetMode(inputtypes.ModeNormal, m.inputContext())
	}
}

func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case eventbus.ErrorEvent:
		m.statusMessage = e.Message
	case eventbus.ConfigSavedEvent:
		m.logger.Debug("config saved", zap.String("path", e.Path))
	}
}

func (m *Model) currentEntity() (domain.Entity, bool) {
	entities := m.query.Entities()
	i := m.nav.GetCursor()
	if i < 0 || i >= len(entities) {
		return domain.Entity{}, false
	}
	return entities[i], true
}

func (m *Model) inputContext() *input.ModelContext {
	return &input.ModelContext{
		Index:    m.nav.GetCursor(),
		Entities: m.query.Entities(),
		State:    m.query.State(),
		Pages:    m.query.NumPages(),
	}
}

// quit releases every status poll before leaving
func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.actions.DisposeAll()
	m.cancel()
	return tea.Quit
}

// Close releases the model's background work; safe to call after quit
func (m *Model) Close() {
	m.actions.DisposeAll()
	m.cancel()
}
