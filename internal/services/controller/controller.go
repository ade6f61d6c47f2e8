package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator"

	"github.com/promoping/promoping-client/internal/lib/sl"
	"github.com/promoping/promoping-client/internal/models"
	"github.com/promoping/promoping-client/internal/result"
)

// API описывает используемые контроллером операции фасада удалённого сервиса.
type API interface {
	Login(ctx context.Context, email, password string) result.Result[models.AuthResponse]
	Register(ctx context.Context, name, email, password, birthDate string) result.Result[models.AuthResponse]
	ConfirmSecondaryLogin(ctx context.Context, code string) result.Result[models.APIMessage]
	FetchProfile(ctx context.Context) result.Result[models.UserProfile]
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) result.Result[models.APIMessage]
	UpdatePreferences(ctx context.Context, req models.UpdatePreferencesRequest) result.Result[models.APIMessage]
	UpdatePassword(ctx context.Context, req models.UpdatePasswordRequest) result.Result[struct{}]
	FetchStats(ctx context.Context) result.Result[models.UserStats]
	FetchProducts(ctx context.Context) result.Result[[]models.Product]
	CreateProduct(ctx context.Context, req models.CreateProductRequest) result.Result[models.APIMessage]
	UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) result.Result[models.APIMessage]
	DeleteProduct(ctx context.Context, id string) result.Result[models.APIMessage]
	ExportProductsExcel(ctx context.Context) result.Result[string]
	ExportProductsPDF(ctx context.Context) result.Result[string]
	ExportFullReport(ctx context.Context) result.Result[string]
	DeactivateAccount(ctx context.Context) result.Result[models.APIMessage]
	DeleteAccount(ctx context.Context) result.Result[models.APIMessage]
	StaticPlans() []models.Plan
}

// SessionStore описывает используемую контроллером часть хранилища сессии.
type SessionStore interface {
	Token() string
	RememberMe() bool
	Save(token string, rememberMe bool) error
	Clear() error
	Watch(ctx context.Context) <-chan string
}

// Controller владеет наблюдаемыми записями UI-состояния и реализует
// машину состояний аутентификации. Единственный драйвер признака
// IsAuthenticated — подписка на поток токена хранилища сессии.
type Controller struct {
	api      API
	sessions SessionStore
	validate *validator.Validate
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	auth      *stateValue[AuthState]
	dashboard *stateValue[DashboardState]
	products  *stateValue[ProductsState]
	profile   *stateValue[ProfileState]
	plans     *stateValue[PlansState]

	loadMu     sync.Mutex
	loadCancel context.CancelFunc
}

// New создаёт контроллер и запускает подписку на поток токена,
// живущую до вызова Close.
func New(api API, sessions SessionStore, log *slog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		api:       api,
		sessions:  sessions,
		validate:  validator.New(),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		auth:      newStateValue(AuthState{}),
		dashboard: newStateValue(DashboardState{}),
		products:  newStateValue(ProductsState{}),
		profile:   newStateValue(ProfileState{}),
		plans:     newStateValue(PlansState{Plans: api.StaticPlans()}),
	}

	go c.watchSession()
	return c
}

// Close останавливает подписки и отменяет все незавершённые загрузки.
func (c *Controller) Close() {
	c.cancel()
}

// Auth возвращает текущее состояние аутентификации.
func (c *Controller) Auth() AuthState { return c.auth.Get() }

// Dashboard возвращает текущее состояние главного экрана.
func (c *Controller) Dashboard() DashboardState { return c.dashboard.Get() }

// Products возвращает текущее состояние списка товаров.
func (c *Controller) Products() ProductsState { return c.products.Get() }

// Profile возвращает текущее состояние профиля.
func (c *Controller) Profile() ProfileState { return c.profile.Get() }

// Plans возвращает текущее состояние каталога планов.
func (c *Controller) Plans() PlansState { return c.plans.Get() }

// WatchAuth возвращает поток состояний аутентификации.
func (c *Controller) WatchAuth(ctx context.Context) <-chan AuthState { return c.auth.watch(ctx) }

// WatchDashboard возвращает поток состояний главного экрана.
func (c *Controller) WatchDashboard(ctx context.Context) <-chan DashboardState {
	return c.dashboard.watch(ctx)
}

// WatchProducts возвращает поток состояний списка товаров.
func (c *Controller) WatchProducts(ctx context.Context) <-chan ProductsState {
	return c.products.watch(ctx)
}

// WatchProfile возвращает поток состояний профиля.
func (c *Controller) WatchProfile(ctx context.Context) <-chan ProfileState {
	return c.profile.watch(ctx)
}

// WatchPlans возвращает поток состояний каталога планов.
func (c *Controller) WatchPlans(ctx context.Context) <-chan PlansState { return c.plans.watch(ctx) }

// watchSession живёт всё время жизни контроллера: каждая эмиссия токена
// пересчитывает IsAuthenticated, появление токена запускает согласованную
// начальную загрузку.
func (c *Controller) watchSession() {
	for token := range c.sessions.Watch(c.ctx) {
		authenticated := token != ""
		c.auth.update(func(s AuthState) AuthState {
			s.Token = token
			s.IsAuthenticated = authenticated
			return s
		})
		if authenticated {
			c.loadInitialData(false)
		}
	}
}

// loadInitialData запускает согласованную загрузку профиля, статистики
// и товаров как одну отменяемую единицу работы. Новая загрузка отменяет
// предыдущую; force обходит защиту "уже загружается".
func (c *Controller) loadInitialData(force bool) {
	c.loadMu.Lock()
	if !force && c.dashboard.Get().Loading {
		c.loadMu.Unlock()
		return
	}
	if c.loadCancel != nil {
		c.loadCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.loadCancel = cancel
	c.loadMu.Unlock()

	go func() {
		c.loadProfile(ctx)
		c.loadStats(ctx)
		c.loadProducts(ctx)
	}()
}

// RefreshAll принудительно перезапускает начальную загрузку.
func (c *Controller) RefreshAll() {
	c.loadInitialData(true)
}

// cancelOngoingLoad отменяет текущую начальную загрузку, если она идёт.
func (c *Controller) cancelOngoingLoad() {
	c.loadMu.Lock()
	if c.loadCancel != nil {
		c.loadCancel()
		c.loadCancel = nil
	}
	c.loadMu.Unlock()
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Name      string `validate:"required,min=2"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	BirthDate string `validate:"required"`
}

// Login выполняет вход. Флаг загрузки выставляется синхронно, до ухода в сеть.
// Признак IsAuthenticated выставит подписка на хранилище сессии после
// сохранения токена, а не этот метод.
func (c *Controller) Login(email, password string) {
	c.auth.update(func(s AuthState) AuthState {
		s.Loading = true
		s.Error = ""
		return s
	})

	email = strings.TrimSpace(email)
	if err := c.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		c.auth.update(func(s AuthState) AuthState {
			s.Loading = false
			s.Error = "invalid email or password"
			return s
		})
		return
	}

	go func() {
		res := c.api.Login(c.ctx, email, password)
		c.applyAuthResult(res)
	}()
}

// Register регистрирует пользователя. Семантика флагов как у Login.
func (c *Controller) Register(name, email, password, birthDate string) {
	c.auth.update(func(s AuthState) AuthState {
		s.Loading = true
		s.Error = ""
		return s
	})

	input := registerInput{
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Password:  password,
		BirthDate: strings.TrimSpace(birthDate),
	}
	if err := c.validate.Struct(input); err != nil {
		c.auth.update(func(s AuthState) AuthState {
			s.Loading = false
			s.Error = "invalid registration data"
			return s
		})
		return
	}

	go func() {
		res := c.api.Register(c.ctx, input.Name, input.Email, input.Password, input.BirthDate)
		c.applyAuthResult(res)
	}()
}

func (c *Controller) applyAuthResult(res result.Result[models.AuthResponse]) {
	switch res.Kind() {
	case result.KindSuccess:
		if token := res.Value().Token; token != "" {
			if err := c.sessions.Save(token, c.sessions.RememberMe()); err != nil {
				c.log.Error("failed to persist token", sl.Err(err))
				c.auth.update(func(s AuthState) AuthState {
					s.Loading = false
					s.Error = err.Error()
					return s
				})
				return
			}
		}
		c.auth.update(func(s AuthState) AuthState {
			s.Loading = false
			s.Error = ""
			if res.Value().User != nil {
				user := res.Value().User.ToDomain()
				s.User = &user
			}
			return s
		})
	case result.KindError:
		c.auth.update(func(s AuthState) AuthState {
			s.Loading = false
			s.Error = res.Message()
			return s
		})
	case result.KindLoading:
		c.auth.update(func(s AuthState) AuthState {
			s.Loading = true
			return s
		})
	}
}

// LoginWithToken сохраняет готовый токен как сессию. Вызывающий отвечает
// за доверие к источнику токена (например, проверенный QR-код).
func (c *Controller) LoginWithToken(token string) {
	go func() {
		if err := c.sessions.Save(token, c.sessions.RememberMe()); err != nil {
			c.log.Error("failed to persist token", sl.Err(err))
			c.auth.update(func(s AuthState) AuthState {
				s.Error = err.Error()
				return s
			})
			return
		}
		c.loadInitialData(true)
	}()
}

// ConfirmSecondaryLogin подтверждает вход на другом устройстве по короткому
// коду. Без локального токена завершается сразу, без обращения к серверу.
// Обработка ошибки зависит от HTTP-статуса: это единственное место,
// где фасадная ошибка ветвится по коду.
func (c *Controller) ConfirmSecondaryLogin(code string) {
	if c.auth.Get().Token == "" {
		c.profile.update(func(s ProfileState) ProfileState {
			s.Error = "sign in on this device first"
			s.Message = ""
			return s
		})
		return
	}

	c.profile.update(func(s ProfileState) ProfileState {
		s.QrLoading = true
		s.Message = ""
		s.Error = ""
		return s
	})

	go func() {
		res := c.api.ConfirmSecondaryLogin(c.ctx, strings.TrimSpace(code))
		switch res.Kind() {
		case result.KindSuccess:
			msg := res.Value().Message
			if msg == "" {
				msg = "session confirmed in browser"
			}
			c.profile.update(func(s ProfileState) ProfileState {
				s.QrLoading = false
				s.Message = msg
				s.Error = ""
				return s
			})
		case result.KindError:
			switch res.StatusCode() {
			case http.StatusBadRequest, http.StatusConflict:
				c.profile.update(func(s ProfileState) ProfileState {
					s.QrLoading = false
					s.Error = res.Message()
					return s
				})
			case http.StatusUnauthorized, http.StatusForbidden:
				// Сессия скомпрометирована или истекла: локальный выход обязателен.
				c.Logout()
				c.profile.update(func(s ProfileState) ProfileState {
					s.QrLoading = false
					s.Error = "session expired, sign in again and retry"
					return s
				})
			default:
				msg := res.Message()
				if msg == "" {
					msg = "server error, try again later"
				}
				c.profile.update(func(s ProfileState) ProfileState {
					s.QrLoading = false
					s.Error = msg
					return s
				})
			}
		case result.KindLoading:
			c.profile.update(func(s ProfileState) ProfileState {
				s.QrLoading = true
				return s
			})
		}
	}()
}

// Logout очищает сессию и сбрасывает все производные записи состояния
// к пустым значениям. Каждая запись заменяется целиком, частичный сброс
// не наблюдаем. Каталог планов сохраняется: он не зависит от сессии.
func (c *Controller) Logout() {
	c.cancelOngoingLoad()

	if err := c.sessions.Clear(); err != nil {
		c.log.Error("failed to clear session", sl.Err(err))
	}
	c.auth.set(AuthState{})
	c.dashboard.set(DashboardState{})
	c.products.set(ProductsState{})
	c.profile.set(ProfileState{})
}
