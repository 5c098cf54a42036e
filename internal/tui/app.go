// Package tui is the terminal front end: browse, dashboard, voice search,
// and the campus meetup map, over the catalog snapshot and the voice
// assistant.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/boilerex/bx/internal/browse"
	"github.com/boilerex/bx/internal/campus"
	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/store"
	"github.com/boilerex/bx/internal/tui/keys"
	"github.com/boilerex/bx/internal/tui/model"
	"github.com/boilerex/bx/internal/tui/ui"
	"github.com/boilerex/bx/internal/tui/views"
	"github.com/boilerex/bx/internal/viewtrack"
	"github.com/boilerex/bx/internal/voice"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// pricePreset is one cyclable price window for the browse view. A max of
// browse.OpenMax stands in for "any price above the floor".
type pricePreset struct {
	min, max float64
	label    string
}

// pricePresets builds the cyclable windows up to and beyond the configured
// ceiling.
func pricePresets(ceiling float64) []pricePreset {
	if ceiling <= 0 {
		ceiling = 1000
	}
	presets := []pricePreset{{0, browse.OpenMax, "any"}}
	bounds := []float64{0, 25, 50, 100, 250, ceiling}
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		if lo >= ceiling {
			break
		}
		if hi > ceiling {
			hi = ceiling
		}
		if hi <= lo {
			continue
		}
		presets = append(presets, pricePreset{lo, hi, market.FormatPrice(lo) + "-" + market.FormatPrice(hi)})
	}
	return append(presets, pricePreset{ceiling, browse.OpenMax, market.FormatPrice(ceiling) + "+"})
}

// Getter fetches a single listing directly from the service.
type Getter interface {
	Get(ctx context.Context, id string) (*market.Listing, error)
}

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *ui.Pages
	theme     *ui.Theme
	vm        *model.ViewModel
	assistant *voice.Assistant
	tracker   *viewtrack.Tracker
	getter    Getter
	registry  *keys.Registry
	logger    *zap.Logger

	statusBar  *views.StatusBar
	menu       *ui.Menu
	browseV    *views.ListingList
	listingV   *views.ListingView
	dashV      *views.DashboardView
	campusV    *views.CampusView
	voiceV     *views.VoiceView
	helpV      *views.HelpView
	filter     *tview.InputField
	cmdInput   *tview.InputField
	root       *tview.Flex
	components map[string]ui.Component

	presets     []pricePreset
	pricePreset int
	openDirect  string

	ctx    context.Context
	cancel context.CancelFunc
}

// Config carries the App's construction parameters.
type Config struct {
	ProfileName  string
	ShareURL     func(listingID string) string
	OpenListing  string  // open this listing ID on startup
	PriceCeiling float64 // top of the price windows; above it is open-ended
}

// NewApp creates the TUI application.
func NewApp(vm *model.ViewModel, assistant *voice.Assistant, tracker *viewtrack.Tracker, getter Getter, logger *zap.Logger, cfg Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	cap := assistant.Available()
	a := &App{
		app:        tview.NewApplication(),
		pages:      ui.NewPages(),
		theme:      theme,
		vm:         vm,
		assistant:  assistant,
		tracker:    tracker,
		getter:     getter,
		registry:   keys.NewRegistry(),
		logger:     logger,
		statusBar:  views.NewStatusBar(),
		menu:       ui.NewMenu(theme),
		browseV:    views.NewListingList(theme),
		listingV:   views.NewListingView(theme, cfg.ShareURL),
		dashV:      views.NewDashboardView(theme),
		campusV:    views.NewCampusView(theme),
		voiceV:     views.NewVoiceView(theme, !cap.OK, cap.Reason),
		helpV:      views.NewHelpView(theme),
		presets:    pricePresets(cfg.PriceCeiling),
		openDirect: cfg.OpenListing,
		ctx:        ctx,
		cancel:     cancel,
	}

	a.components = map[string]ui.Component{
		"browse":    a.browseV,
		"listing":   a.listingV,
		"dashboard": a.dashV,
		"campus":    a.campusV,
		"voice":     a.voiceV,
		"help":      a.helpV,
	}

	a.statusBar.SetProfile(cfg.ProfileName)
	a.statusBar.SetCatalog("loading")
	a.setupVoiceCallbacks()
	a.setupBindings()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "?:help", Visible: true,
		Handler: func() { a.pages.Push("help") },
	})
	a.registry.AddGlobal("voice", &keys.Action{
		Rune: 'v', Key: tcell.KeyRune,
		Handler: func() { a.showVoice() },
	})
	a.registry.AddGlobal("browse", &keys.Action{
		Rune: 'b', Key: tcell.KeyRune,
		Handler: func() { a.pages.Reset("browse"); a.app.SetFocus(a.browseV) },
	})
	a.registry.AddGlobal("map", &keys.Action{
		Rune: 'm', Key: tcell.KeyRune,
		Handler: func() { a.pages.Push("campus"); a.app.SetFocus(a.campusV.Table()) },
	})
	a.registry.AddGlobal("dashboard", &keys.Action{
		Rune: 'g', Key: tcell.KeyRune,
		Handler: func() { a.showDashboard() },
	})

	a.registry.AddView("browse", "open", &keys.Action{
		Key: tcell.KeyEnter,
		Handler: func() {
			if l := a.browseV.Selected(); l != nil {
				a.openListing(l)
			}
		},
	})
	a.registry.AddView("browse", "search", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Handler: func() { a.app.SetFocus(a.filter) },
	})
	a.registry.AddView("browse", "category", &keys.Action{
		Rune: 'c', Key: tcell.KeyRune,
		Handler: func() { a.cycleCategory() },
	})
	a.registry.AddView("browse", "condition", &keys.Action{
		Rune: 'o', Key: tcell.KeyRune,
		Handler: func() { a.cycleCondition() },
	})
	a.registry.AddView("browse", "sort", &keys.Action{
		Rune: 's', Key: tcell.KeyRune,
		Handler: func() { a.cycleSort() },
	})
	a.registry.AddView("browse", "price", &keys.Action{
		Rune: 'p', Key: tcell.KeyRune,
		Handler: func() { a.cyclePrice() },
	})
	a.registry.AddView("browse", "sold", &keys.Action{
		Rune: 'x', Key: tcell.KeyRune,
		Handler: func() {
			a.vm.UpdateCriteria(func(c *browse.Criteria) { c.ShowSold = !c.ShowSold })
			a.redrawBrowse()
		},
	})
	a.registry.AddView("browse", "clear", &keys.Action{
		Rune: '0', Key: tcell.KeyRune,
		Handler: func() {
			a.filter.SetText("")
			a.pricePreset = 0
			a.vm.ResetCriteria()
			a.vm.Flash.Clear()
			a.statusBar.SetFlash("")
			a.redrawBrowse()
		},
	})
	a.registry.AddView("browse", "refresh", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Handler: func() { go a.reload() },
	})

	a.registry.AddView("dashboard", "open", &keys.Action{
		Key: tcell.KeyEnter,
		Handler: func() {
			if l := a.dashV.Selected(); l != nil {
				a.openListing(l)
			}
		},
	})

	a.registry.AddView("listing", "favorite", &keys.Action{
		Rune: 'f', Key: tcell.KeyRune,
		Handler: func() { a.toggleFavorite() },
	})
	a.registry.AddView("listing", "qr", &keys.Action{
		Rune: 'Q', Key: tcell.KeyRune,
		Handler: func() { a.listingV.ToggleQR() },
	})

	a.registry.AddView("campus", "directions", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Handler: func() {
			if loc := a.campusV.Selected(); loc != nil {
				a.vm.Flash.Set(campus.DirectionsURL(*loc), 10*time.Second)
				a.statusBar.SetFlash(a.vm.Flash.Get())
			}
		},
	})

	a.registry.AddView("voice", "open", &keys.Action{
		Key:     tcell.KeyEnter,
		Handler: func() { a.openVoiceResult() },
	})
}

func (a *App) setupVoiceCallbacks() {
	a.assistant.SetCallbacks(voice.Callbacks{
		OnState: func(from, to voice.State) {
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetVoice(string(to))
				a.voiceV.ShowState(to, a.assistant.Transcript())
			})
		},
		OnTranscript: func(text string, final bool) {
			a.app.QueueUpdateDraw(func() {
				a.voiceV.ShowState(a.assistant.State(), text)
			})
		},
		OnResults: func(query string, results []market.ListingSummary) {
			a.vm.SetVoiceResults(query, results)
			a.vm.RecordSearch(query, store.SearchSourceVoice)
			a.app.QueueUpdateDraw(func() {
				a.voiceV.ShowResults(query, results)
				if len(results) > 0 {
					a.app.SetFocus(a.voiceV.Results())
				}
			})
		},
		OnError: func(msg string) {
			a.app.QueueUpdateDraw(func() {
				a.voiceV.ShowError(msg)
			})
		},
	})

	a.voiceV.SetOnQuery(func(query string) {
		if query == "" {
			return
		}
		a.vm.RecordSearch(query, store.SearchSourceText)
		go a.assistant.SearchText(a.ctx, query)
	})
}

func (a *App) setupLayout() {
	a.filter = tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0)
	a.filter.SetBackgroundColor(a.theme.BgColor)
	a.filter.SetFieldBackgroundColor(a.theme.BgColor)
	a.filter.SetFieldTextColor(a.theme.FgColor)
	a.filter.SetLabelColor(a.theme.MenuKeyColor)
	a.filter.SetChangedFunc(func(text string) {
		a.vm.UpdateCriteria(func(c *browse.Criteria) { c.SearchTerm = text })
		a.redrawBrowse()
	})
	a.filter.SetDoneFunc(func(key tcell.Key) {
		a.app.SetFocus(a.browseV)
	})

	browseFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.filter, 1, 0, false).
		AddItem(a.browseV, 0, 1, true)

	a.pages.AddPage("dashboard", a.dashV, true, false)
	a.pages.AddPage("browse", browseFlex, true, false)
	a.pages.AddPage("listing", a.listingV, true, false)
	a.pages.AddPage("campus", a.campusV, true, false)
	a.pages.AddPage("voice", a.voiceV, true, false)
	a.pages.AddPage("help", a.helpV, true, false)

	a.cmdInput = tview.NewInputField().
		SetLabel(" : ").
		SetFieldWidth(0)
	a.cmdInput.SetBackgroundColor(a.theme.BgColor)
	a.cmdInput.SetFieldBackgroundColor(a.theme.BgColor)
	a.cmdInput.SetFieldTextColor(a.theme.FgColor)
	a.cmdInput.SetLabelColor(a.theme.MenuKeyColor)
	a.cmdInput.SetDoneFunc(func(key tcell.Key) {
		text := a.cmdInput.GetText()
		a.cmdInput.SetText("")
		a.hideCommand()
		if key == tcell.KeyEnter && text != "" {
			a.runCommand(ParseCommand(text))
		}
	})

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.menu, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)

	a.pages.SetOnChange(func(current string) {
		if c, ok := a.components[current]; ok {
			a.menu.Update(c.Hints())
		}
	})

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage := a.pages.Current()

		if event.Key() == tcell.KeyEscape {
			if a.app.GetFocus() == a.cmdInput {
				a.hideCommand()
				return nil
			}
			if currentPage == "voice" {
				a.assistant.Stop()
			}
			if a.pages.Depth() > 1 {
				a.pages.Pop()
				a.focusCurrent()
				return nil
			}
			return nil
		}

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}

		if event.Key() == tcell.KeyRune && event.Rune() == ':' {
			a.showCommand()
			return nil
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}

		return event
	})
}

func (a *App) focusCurrent() {
	switch a.pages.Current() {
	case "browse":
		a.app.SetFocus(a.browseV)
	case "dashboard":
		a.app.SetFocus(a.dashV.Table())
	case "campus":
		a.app.SetFocus(a.campusV.Table())
	case "voice":
		a.app.SetFocus(a.voiceV)
	default:
		a.app.SetFocus(a.pages)
	}
}

func (a *App) showCommand() {
	a.root.RemoveItem(a.statusBar)
	a.root.AddItem(a.cmdInput, 1, 0, false)
	a.app.SetFocus(a.cmdInput)
}

func (a *App) hideCommand() {
	a.root.RemoveItem(a.cmdInput)
	a.root.AddItem(a.statusBar, 1, 0, false)
	a.focusCurrent()
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "browse", "b":
		a.pages.Reset("browse")
		a.app.SetFocus(a.browseV)
	case "dash", "dashboard", "d":
		a.showDashboard()
	case "map", "meetup":
		a.pages.Push("campus")
		a.app.SetFocus(a.campusV.Table())
	case "open":
		if cmd.Args != "" {
			go a.openListingByID(cmd.Args)
		}
	case "voice", "search":
		a.pages.Push("voice")
		if cmd.Args != "" {
			a.vm.RecordSearch(cmd.Args, store.SearchSourceText)
			go a.assistant.SearchText(a.ctx, cmd.Args)
		}
	case "refresh", "r":
		go a.reload()
	case "help", "h":
		a.pages.Push("help")
	case "quit", "q":
		a.app.Stop()
	default:
		a.vm.Flash.Set("Unknown command: "+cmd.Name, 3*time.Second)
		a.statusBar.SetFlash(a.vm.Flash.Get())
	}
}

func (a *App) cycleCategory() {
	a.vm.UpdateCriteria(func(c *browse.Criteria) {
		c.Category = cycleValue(c.Category, market.Categories)
	})
	a.redrawBrowse()
}

func (a *App) cycleCondition() {
	a.vm.UpdateCriteria(func(c *browse.Criteria) {
		c.Condition = cycleValue(c.Condition, market.Conditions)
	})
	a.redrawBrowse()
}

func (a *App) cycleSort() {
	a.vm.UpdateCriteria(func(c *browse.Criteria) {
		for i, m := range browse.SortModes {
			if m == c.SortBy {
				c.SortBy = browse.SortModes[(i+1)%len(browse.SortModes)]
				return
			}
		}
		c.SortBy = browse.SortNewest
	})
	a.redrawBrowse()
}

func (a *App) cyclePrice() {
	a.pricePreset = (a.pricePreset + 1) % len(a.presets)
	p := a.presets[a.pricePreset]
	a.vm.UpdateCriteria(func(c *browse.Criteria) {
		c.PriceMin, c.PriceMax = p.min, p.max
	})
	a.vm.Flash.Set("Price: "+p.label, 2*time.Second)
	a.statusBar.SetFlash(a.vm.Flash.Get())
	a.redrawBrowse()
}

// cycleValue advances through "all" plus the given options.
func cycleValue(current string, options []string) string {
	if current == browse.All {
		if len(options) == 0 {
			return browse.All
		}
		return options[0]
	}
	for i, o := range options {
		if o == current {
			if i+1 < len(options) {
				return options[i+1]
			}
			return browse.All
		}
	}
	return browse.All
}

func (a *App) redrawBrowse() {
	a.browseV.Update(a.vm.Listings(), a.vm.Criteria())
}

func (a *App) openListing(l *market.Listing) {
	a.vm.Select(l)
	a.tracker.Record(l.ID)
	fav, err := a.vm.Favorites()
	isFav := false
	if err == nil {
		for _, f := range fav {
			if f.ListingID == l.ID {
				isFav = true
				break
			}
		}
	}
	a.listingV.Show(l, isFav)
	a.pages.Push("listing")
}

// openListingByID resolves an ID against the snapshot first, then the
// service. Used by :open and the --listing startup flag.
func (a *App) openListingByID(id string) {
	for _, l := range a.vm.Listings() {
		if l.ID == id {
			found := l
			a.app.QueueUpdateDraw(func() { a.openListing(&found) })
			return
		}
	}
	l, err := a.getter.Get(a.ctx, id)
	if err != nil {
		a.logger.Warn("listing open failed", zap.String("id", id), zap.Error(err))
		a.app.QueueUpdateDraw(func() {
			a.vm.Flash.Set("Listing not found: "+id, 4*time.Second)
			a.statusBar.SetFlash(a.vm.Flash.Get())
		})
		return
	}
	a.app.QueueUpdateDraw(func() { a.openListing(l) })
}

func (a *App) openVoiceResult() {
	id := a.voiceV.SelectedID()
	if id == "" {
		return
	}
	go a.openListingByID(id)
}

func (a *App) toggleFavorite() {
	l := a.listingV.Listing()
	if l == nil {
		return
	}
	fav, err := a.vm.ToggleFavorite(l)
	if err != nil {
		a.vm.Flash.Set("Favorite failed: "+err.Error(), 4*time.Second)
		a.statusBar.SetFlash(a.vm.Flash.Get())
		return
	}
	a.listingV.SetFavorite(fav)
}

func (a *App) showVoice() {
	if a.pages.Current() != "voice" {
		a.pages.Push("voice")
		if query, results := a.vm.VoiceResults(); query != "" {
			a.voiceV.ShowResults(query, results)
		}
	}
	if a.assistant.Available().OK {
		a.assistant.Activate(a.ctx)
	} else {
		a.app.SetFocus(a.voiceV.Input())
	}
}

func (a *App) showDashboard() {
	a.pages.Reset("dashboard")
	a.app.SetFocus(a.dashV.Table())
	go a.refreshDashboard()
}

func (a *App) refreshDashboard() {
	recent, err := a.vm.Recent(a.ctx, 10)
	if err != nil {
		a.logger.Warn("dashboard refresh failed", zap.Error(err))
	}
	favs, _ := a.vm.Favorites()
	searches, _ := a.vm.RecentSearches(8)
	a.app.QueueUpdateDraw(func() {
		a.dashV.Update(recent, favs, searches)
	})
}

func (a *App) reload() {
	if err := a.vm.Reload(a.ctx); err != nil {
		a.vm.Flash.Set("Refresh failed: "+err.Error(), 5*time.Second)
	}
	a.app.QueueUpdateDraw(func() {
		a.redrawBrowse()
		status := fmt.Sprintf("%d listings", len(a.vm.Listings()))
		if skipped := a.vm.ExcludedCount(); skipped > 0 {
			status += fmt.Sprintf(" (%d skipped)", skipped)
		}
		a.statusBar.SetCatalog(status)
		a.statusBar.SetFlash(a.vm.Flash.Get())
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	a.pages.Reset("browse")
	a.app.SetFocus(a.browseV)
	a.menu.Update(a.browseV.Hints())

	go func() {
		a.reload()
		a.refreshDashboard()
		if a.openDirect != "" {
			a.openListingByID(a.openDirect)
		}
		a.startRefreshLoop()
	}()

	return a.app.Run()
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		redraw := func() {
			a.app.QueueUpdateDraw(func() {
				if a.pages.Current() == "browse" {
					a.redrawBrowse()
				}
				a.statusBar.SetFlash(a.vm.Flash.Get())
			})
		}
		for {
			select {
			case <-a.vm.RefreshCh():
				redraw()
			case <-ticker.C:
				redraw()
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.assistant.Stop()
	a.cancel()
	a.app.Stop()
}
