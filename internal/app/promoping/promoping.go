// Package promoping собирает зависимости клиента и предоставляет
// терминальный интерфейс поверх контроллера состояния.
// Терминал — тонкий слой представления: он только читает наблюдаемое
// состояние и вызывает команды контроллера.
package promoping

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/promoping/promoping-client/internal/config"
	"github.com/promoping/promoping-client/internal/gateway"
	"github.com/promoping/promoping-client/internal/models"
	"github.com/promoping/promoping-client/internal/netinfo"
	"github.com/promoping/promoping-client/internal/repository"
	"github.com/promoping/promoping-client/internal/services/controller"
	"github.com/promoping/promoping-client/internal/session"
)

// App клиент PromoPing: хранилище сессии, шлюз, фасад и контроллер.
type App struct {
	controller *controller.Controller
	sessions   *session.Store
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
}

// New создаёт приложение с зависимостями из конфига.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	sessions, err := session.New(cfg.SessionPath, logger)
	if err != nil {
		return nil, err
	}

	gw := gateway.New(cfg, sessions, netinfo.SystemInspector{}, logger)
	repo := repository.New(gw, cfg.CacheDir, logger)
	ctrl := controller.New(repo, sessions, logger)

	return &App{
		controller: ctrl,
		sessions:   sessions,
		logger:     logger,
		in:         os.Stdin,
		out:        os.Stdout,
	}, nil
}

// Controller возвращает контроллер состояния (для встраивания в другой UI).
func (a *App) Controller() *controller.Controller {
	return a.controller
}

// Run запускает командный цикл до EOF или отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.controller.Close()

	go a.printAuthChanges(ctx)
	go a.printProfileMessages(ctx)

	fmt.Fprintln(a.out, `promoping client, "help" for commands`)

	scanner := bufio.NewScanner(a.in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(a.out, "> ")
		select {
		case <-ctx.Done():
			a.logger.Info("shutting down")
			return nil
		case line, ok := <-lines:
			if !ok {
				return scanner.Err()
			}
			if quit := a.dispatch(line); quit {
				return nil
			}
		}
	}
}

// printAuthChanges печатает смену признака аутентификации.
func (a *App) printAuthChanges(ctx context.Context) {
	last := a.controller.Auth().IsAuthenticated
	for state := range a.controller.WatchAuth(ctx) {
		if state.IsAuthenticated != last {
			last = state.IsAuthenticated
			if state.IsAuthenticated {
				fmt.Fprintln(a.out, "\n[signed in]")
			} else {
				fmt.Fprintln(a.out, "\n[signed out]")
			}
		}
		if state.Error != "" {
			fmt.Fprintf(a.out, "\n[auth error] %s\n", state.Error)
		}
	}
}

// printProfileMessages печатает сообщения и ошибки операций профиля.
func (a *App) printProfileMessages(ctx context.Context) {
	var lastMsg, lastErr string
	for state := range a.controller.WatchProfile(ctx) {
		if state.Message != "" && state.Message != lastMsg {
			fmt.Fprintf(a.out, "\n[ok] %s\n", state.Message)
		}
		if state.Error != "" && state.Error != lastErr {
			fmt.Fprintf(a.out, "\n[error] %s\n", state.Error)
		}
		lastMsg, lastErr = state.Message, state.Error
	}
}

func (a *App) dispatch(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		a.printHelp()
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "usage: login <email> <password>")
			return false
		}
		a.controller.Login(args[0], args[1])
	case "register":
		if len(args) != 4 {
			fmt.Fprintln(a.out, "usage: register <name> <email> <password> <birth-date>")
			return false
		}
		a.controller.Register(args[0], args[1], args[2], args[3])
	case "logout":
		a.controller.Logout()
	case "token":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: token <jwt>")
			return false
		}
		a.controller.LoginWithToken(args[0])
	case "qr":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: qr <code>")
			return false
		}
		a.controller.ConfirmSecondaryLogin(args[0])
	case "refresh":
		a.controller.RefreshAll()
	case "products":
		a.printProducts()
	case "filter":
		query, store, status := "", "", ""
		if len(args) > 0 {
			query = args[0]
		}
		if len(args) > 1 {
			store = args[1]
		}
		if len(args) > 2 {
			status = args[2]
		}
		a.controller.UpdateFilters(query, store, status)
		a.printProducts()
	case "add":
		if len(args) < 3 {
			fmt.Fprintln(a.out, "usage: add <name> <link> <target-price> [deadline]")
			return false
		}
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintln(a.out, "invalid target price")
			return false
		}
		deadline := ""
		if len(args) > 3 {
			deadline = args[3]
		}
		a.controller.AddProduct(args[0], args[1], deadline, price)
	case "del":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: del <id>")
			return false
		}
		a.controller.DeleteProduct(args[0])
	case "edit":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "usage: edit <id> <target-price>")
			return false
		}
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintln(a.out, "invalid target price")
			return false
		}
		a.controller.UpdateProduct(args[0], models.UpdateProductRequest{TargetPrice: &price})
	case "dashboard":
		a.printDashboard()
	case "profile":
		a.controller.LoadProfile()
		a.printProfile()
	case "setprofile":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "usage: setprofile <name> <email> [phone]")
			return false
		}
		phone := ""
		if len(args) > 2 {
			phone = args[2]
		}
		a.controller.SaveProfile(args[0], args[1], phone, nil, nil)
	case "notify":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			fmt.Fprintln(a.out, "usage: notify email|discord on|off")
			return false
		}
		profile := a.controller.Profile().Profile
		if profile == nil {
			fmt.Fprintln(a.out, "load the profile first")
			return false
		}
		enabled := args[1] == "on"
		var emailNotif, discordNotif *bool
		switch args[0] {
		case "email":
			emailNotif = &enabled
		case "discord":
			discordNotif = &enabled
		default:
			fmt.Fprintln(a.out, "usage: notify email|discord on|off")
			return false
		}
		a.controller.SaveProfile(profile.Name, profile.Email, profile.Phone, emailNotif, discordNotif)
	case "passwd":
		if len(args) != 3 {
			fmt.Fprintln(a.out, "usage: passwd <current> <new> <confirm>")
			return false
		}
		a.controller.ChangePassword(args[0], args[1], args[2])
	case "deactivate":
		a.controller.DeactivateAccount()
	case "delete-account":
		a.controller.DeleteAccount()
	case "plans":
		a.printPlans()
	case "billing":
		a.controller.ToggleBilling()
		a.printPlans()
	case "export":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: export excel|pdf|report")
			return false
		}
		switch args[0] {
		case "excel":
			a.controller.ExportExcel()
		case "pdf":
			a.controller.ExportPDF()
		case "report":
			a.controller.ExportFullReport()
		default:
			fmt.Fprintln(a.out, "usage: export excel|pdf|report")
		}
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(a.out, "unknown command %q, try \"help\"\n", cmd)
	}
	return false
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, `commands:
  login <email> <password>
  register <name> <email> <password> <birth-date>
  token <jwt>              sign in with a ready token (scanned QR payload)
  logout
  qr <code>                confirm a login on another device
  refresh                  reload profile, stats and products
  products                 list tracked products (filtered)
  filter [query] [store] [status]
  add <name> <link> <target-price> [deadline]
  edit <id> <target-price>
  del <id>
  dashboard
  profile
  setprofile <name> <email> [phone]
  notify email|discord on|off
  passwd <current> <new> <confirm>
  plans
  billing                  toggle monthly/annual prices
  export excel|pdf|report
  deactivate
  delete-account
  quit`)
}

func (a *App) printProducts() {
	state := a.controller.Products()
	if state.Error != "" {
		fmt.Fprintf(a.out, "[error] %s\n", state.Error)
	}
	filtered := state.Filtered()
	if len(filtered) == 0 {
		fmt.Fprintln(a.out, "no products")
		return
	}
	for _, p := range filtered {
		price := "-"
		if p.CurrentPrice != nil {
			price = fmt.Sprintf("%.2f", *p.CurrentPrice)
		}
		target := "-"
		if p.TargetPrice != nil {
			target = fmt.Sprintf("%.2f", *p.TargetPrice)
		}
		fmt.Fprintf(a.out, "%s  %-30s  %s -> %s  [%s]\n", p.ID, p.Name, price, target, p.Status)
	}
}

func (a *App) printDashboard() {
	state := a.controller.Dashboard()
	if state.Error != "" {
		fmt.Fprintf(a.out, "[error] %s\n", state.Error)
	}
	if state.Stats != nil {
		fmt.Fprintf(a.out, "products: %d, notifications: %d, saved: %.2f\n",
			state.Stats.TotalProducts, state.Stats.TotalNotifications, state.Stats.Saved)
	}
	fmt.Fprintf(a.out, "%d tracked products\n", len(state.Products))
}

func (a *App) printProfile() {
	state := a.controller.Profile()
	if state.Profile == nil {
		fmt.Fprintln(a.out, "profile not loaded yet, repeat in a moment")
		return
	}
	p := state.Profile
	fmt.Fprintf(a.out, "%s <%s> %s\n", p.Name, p.Email, p.Phone)
}

func (a *App) printPlans() {
	state := a.controller.Plans()
	period := "month"
	for _, plan := range state.Plans {
		price := plan.MonthlyPrice
		if state.BillingAnnual {
			price = plan.AnnualPrice
			period = "year"
		}
		fmt.Fprintf(a.out, "%-10s %7.2f/%s  up to %d products, every %dh\n",
			plan.Name, price, period, plan.ProductLimit, plan.CheckIntervalHours)
	}
}
