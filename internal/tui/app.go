package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/jask/pocketledger/internal/model"
	"github.com/jask/pocketledger/internal/prefs"
	"github.com/jask/pocketledger/internal/service"
)

// App is the action center: a list of action items with quick resolutions.
type App struct {
	ctx      context.Context
	services Services
	userID   string
	currency string
	tz       *time.Location

	state  appState
	modal  modalState
	items  []model.ActionItem
	cursor int
	status string

	accounts []model.Account
	owed     decimal.Decimal

	// import flow
	importPrefs prefs.Import
	importPath  string
	lastImport  *service.ImportResult
}

type Services struct {
	Engine        *service.ActionEngine
	Ledger        *service.Ledger
	Transfers     *service.Transfers
	Income        *service.Income
	Subscriptions *service.Subscriptions
	Reviews       *service.Reviews
	Accounts      *service.Accounts
	Import        *service.ImportService
	Maintenance   *service.MaintenanceService
	Prefs         *prefs.Store
}

type appState string

const (
	viewActions appState = "actions"
	viewImport  appState = "import"
)

type modalState string

const (
	modalNone         modalState = ""
	modalConfirmReset modalState = "confirmReset"
)

func New(ctx context.Context, services Services, userID, currency string, tz *time.Location) *App {
	if tz == nil {
		tz = time.Local
	}
	p := prefs.Import{}.Defaults()
	if services.Prefs != nil {
		// a corrupt file still yields defaults
		p, _ = services.Prefs.LoadImport()
	}
	return &App{
		ctx:         ctx,
		services:    services,
		userID:      userID,
		currency:    currency,
		tz:          tz,
		state:       viewActions,
		importPrefs: p,
		importPath:  p.Path,
	}
}

func (a *App) Init() tea.Cmd {
	return a.refreshCmd("")
}

// refreshCmd re-runs the rules and reloads the list, reporting status.
func (a *App) refreshCmd(status string) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Engine.Generate(a.ctx, a.userID); err != nil {
			return errMsg{err}
		}
		return a.snapshot(status)
	}
}

func (a *App) snapshot(status string) itemsMsg {
	msg := itemsMsg{items: a.services.Engine.Items(a.userID), status: status, owed: decimal.Zero}
	if a.services.Accounts != nil {
		msg.accounts = a.services.Accounts.List(a.userID)
	}
	if a.services.Ledger != nil {
		for _, b := range a.services.Ledger.Balances(a.userID) {
			msg.owed = msg.owed.Add(b.Amount)
		}
	}
	return msg
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewImport {
			return a.handleImportKey(m)
		}
		switch m.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(a.items)-1 {
				a.cursor++
			}
		case "r":
			a.status = "refreshing..."
			return a, a.refreshCmd("refreshed")
		case "d":
			if it, ok := a.selected(); ok {
				return a, a.dismissCmd(it)
			}
		case "c":
			if it, ok := a.selected(); ok {
				return a, a.confirmCmd(it)
			}
		case "x":
			if it, ok := a.selected(); ok {
				if it.Type != model.ActionPendingTransfer {
					a.status = "only transfers can be declined"
					return a, nil
				}
				return a, a.declineCmd(it)
			}
		case "i":
			a.state = viewImport
			a.status = ""
		case "R":
			a.modal = modalConfirmReset
		}
	case itemsMsg:
		a.items = m.items
		a.accounts = m.accounts
		a.owed = m.owed
		if a.cursor >= len(a.items) {
			a.cursor = 0
		}
		if m.status != "" {
			a.status = m.status
		}
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	case ingestDoneMsg:
		a.lastImport = &m.Result
		a.importPrefs = m.Prefs
		summary := fmt.Sprintf("imported %d, skipped %d", m.Result.Imported, m.Result.Skipped)
		if len(m.Result.Errors) > 0 {
			summary += fmt.Sprintf(", errors %d (see import view)", len(m.Result.Errors))
		}
		a.state = viewActions
		return a, a.refreshCmd(summary)
	}
	return a, nil
}

func (a *App) selected() (model.ActionItem, bool) {
	if len(a.items) == 0 {
		return model.ActionItem{}, false
	}
	return a.items[a.cursor], true
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewImport:
		body = a.renderImport()
	default:
		body = a.renderActions()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

// commands
func (a *App) dismissCmd(it model.ActionItem) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Engine.Dismiss(a.ctx, it.ID); err != nil {
			return errMsg{err}
		}
		return a.snapshot("dismissed")
	}
}

// confirmCmd resolves an item the way its type asks for.
func (a *App) confirmCmd(it model.ActionItem) tea.Cmd {
	return func() tea.Msg {
		var (
			err    error
			status string
		)
		switch it.Type {
		case model.ActionPendingTransfer:
			_, err = a.services.Transfers.Confirm(a.ctx, it.Related())
			status = "transfer confirmed"
		case model.ActionSalaryPending:
			_, err = a.services.Income.ConfirmDeposit(a.ctx, it.Related(), decimal.Zero)
			status = "deposit recorded"
		case model.ActionSubscriptionDue:
			_, err = a.services.Subscriptions.RecordPayment(a.ctx, it.Related())
			status = "payment recorded"
		case model.ActionMonthlyFinanceReview:
			err = a.services.Reviews.CompleteItem(a.ctx, it)
			status = "review completed"
		case model.ActionFriendBalance:
			err = a.settleBalance(it.Related())
			status = "settled up"
		case model.ActionOverspending, model.ActionCreditCardUsage:
			return statusMsg("nothing to confirm, press d to dismiss")
		default:
			return statusMsg("unknown action " + string(it.Type))
		}
		if err != nil {
			return errMsg{err}
		}
		if err := a.services.Engine.Generate(a.ctx, a.userID); err != nil {
			return errMsg{err}
		}
		return a.snapshot(status)
	}
}

func (a *App) settleBalance(balanceID string) error {
	for _, b := range a.services.Ledger.Balances(a.userID) {
		if b.ID == balanceID {
			_, err := a.services.Ledger.SettleUpBalance(a.ctx, a.userID, b.PersonName)
			return err
		}
	}
	return fmt.Errorf("balance %s: %w", balanceID, service.ErrNotFound)
}

func (a *App) declineCmd(it model.ActionItem) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Transfers.Decline(a.ctx, it.Related()); err != nil {
			return errMsg{err}
		}
		return a.snapshot("transfer declined")
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if a.services.Maintenance == nil {
			return errMsg{fmt.Errorf("maintenance not configured")}
		}
		if err := a.services.Maintenance.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return a.snapshot("data reset (empty) - import or seed sample data")
	}
}

func (a *App) ingestCmd(path string) tea.Cmd {
	abs := path
	if !filepath.IsAbs(path) {
		if p, err := filepath.Abs(path); err == nil {
			abs = p
		}
	}
	a.status = "importing..."
	if a.services.Import == nil {
		return func() tea.Msg { return errMsg{fmt.Errorf("import service not configured")} }
	}
	p := a.importPrefs
	p.Path = abs
	return func() tea.Msg {
		f, err := os.Open(abs)
		if err != nil {
			return errMsg{fmt.Errorf("open %s: %w", abs, err)}
		}
		defer f.Close()

		var res service.ImportResult
		if p.Format == prefs.FormatANZ {
			res, err = a.services.Import.ImportANZSimple(a.ctx, a.userID, f, p.Account, a.tz)
		} else {
			res, err = a.services.Import.ImportCSV(a.ctx, a.userID, f, a.tz)
		}
		if err != nil {
			return errMsg{err}
		}
		if a.services.Prefs != nil {
			if err := a.services.Prefs.SaveImport(p); err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("save import settings: %w", err))
			}
		}
		for i := range res.Errors {
			res.Errors[i] = fmt.Errorf("%s: %w", filepath.Base(abs), res.Errors[i])
		}
		return ingestDoneMsg{Result: res, Prefs: p}
	}
}

func (a *App) handleImportKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	}
	switch m.Type {
	case tea.KeyEsc:
		a.state = viewActions
		a.status = ""
	case tea.KeyTab:
		if a.importPrefs.Format == prefs.FormatANZ {
			a.importPrefs.Format = prefs.FormatGeneric
		} else {
			a.importPrefs.Format = prefs.FormatANZ
		}
	case tea.KeyEnter:
		path := strings.TrimSpace(a.importPath)
		if path == "" {
			a.status = "enter a CSV path"
			return a, nil
		}
		return a, a.ingestCmd(path)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.importPath) > 0 {
			a.importPath = a.importPath[:len(a.importPath)-1]
		}
	case tea.KeySpace:
		a.importPath += " "
	case tea.KeyRunes:
		a.importPath += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmReset:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			return a, a.resetCmd()
		case "n", "N", "esc":
			a.modal = modalNone
		}
	}
	return a, nil
}

type itemsMsg struct {
	items    []model.ActionItem
	accounts []model.Account
	owed     decimal.Decimal
	status   string
}

type statusMsg string

type errMsg struct{ error }

type ingestDoneMsg struct {
	Result service.ImportResult
	Prefs  prefs.Import
}

// styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	priorityStyle = map[model.Priority]lipgloss.Style{
		model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

func (a *App) money(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + a.currency
}

func (a *App) renderActions() string {
	title := titleStyle.Render("Action Center - " + time.Now().In(a.tz).Format("Monday 2 January"))
	var b strings.Builder
	b.WriteString(title + "\n")

	total := decimal.Zero
	for _, acct := range a.accounts {
		total = total.Add(acct.Balance)
	}
	fmt.Fprintf(&b, "Accounts: %d  Net: %s  Owed to you: %s\n\n", len(a.accounts), a.money(total), a.money(a.owed))

	if len(a.items) == 0 {
		b.WriteString("Nothing needs your attention.\n")
	}
	for i, it := range a.items {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		label := priorityStyle[it.Priority].Render(fmt.Sprintf("%-12s", it.Type.Label()))
		fmt.Fprintf(&b, "%s %s %s\n", marker, label, it.Title)
		if i == a.cursor && it.Message != "" {
			fmt.Fprintf(&b, "    %s\n", it.Message)
		}
	}
	b.WriteString(helpStyle.Render("[j/k] Move  [c] Confirm  [x] Decline  [d] Dismiss  [r] Refresh  [i] Import CSV  [R] Reset  [q] Quit"))
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}
	return b.String()
}

func (a *App) renderImport() string {
	title := titleStyle.Render("Import expenses")
	columns := "date, description, amount, category, account"
	if a.importPrefs.Format == prefs.FormatANZ {
		columns = "ANZ export (date, amount, description), debits into " + a.importPrefs.Account
	}
	body := fmt.Sprintf("CSV path: %s\nFormat: %s (%s)\n[enter] Import  [tab] Format  [esc] Back", a.importPath, a.importPrefs.Format, columns)
	if a.lastImport != nil {
		body += fmt.Sprintf("\nLast import: %d imported, %d skipped, %d errors", a.lastImport.Imported, a.lastImport.Skipped, len(a.lastImport.Errors))
		if len(a.lastImport.Errors) > 0 {
			body += "\nFirst error: " + a.lastImport.Errors[0].Error()
			if len(a.lastImport.Errors) > 1 {
				body += fmt.Sprintf(" (+%d more)", len(a.lastImport.Errors)-1)
			}
		}
	}
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmReset:
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).
			Render("Delete ALL data? Accounts, expenses and action items will be wiped.\n[y] Yes  [n] No")
	}
	return ""
}
