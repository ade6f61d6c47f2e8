// Package repository реализует фасад API удалённого сервиса PromoPing.
//
// Каждый метод — одна попытка без повторов, любой исход нормализуется
// в result.Result: транспортная ошибка, HTTP-ошибка с разобранным телом,
// успех. Фасад никогда не паникует и не возвращает error вызывающему.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/promoping/promoping-client/internal/gateway"
	"github.com/promoping/promoping-client/internal/models"
	"github.com/promoping/promoping-client/internal/result"
)

const errorBodyPreviewLimit = 120

// Transport описывает используемую фасадом часть сетевого шлюза.
type Transport interface {
	DoJSON(ctx context.Context, method, path string, body any) (*gateway.Response, error)
	DoStream(ctx context.Context, method, path string) (int, io.ReadCloser, error)
}

// Repository фасад операций удалённого сервиса.
// Методы безопасны для конкурентных вызовов: фасад не хранит изменяемого
// состояния, токен читается шлюзом из хранилища сессии на каждый запрос.
type Repository struct {
	transport Transport
	cacheDir  string
	log       *slog.Logger
}

// New создаёт фасад. cacheDir — каталог для файлов экспорта.
func New(transport Transport, cacheDir string, log *slog.Logger) *Repository {
	return &Repository{
		transport: transport,
		cacheDir:  cacheDir,
		log:       log,
	}
}

// Login выполняет вход по почте и паролю.
func (r *Repository) Login(ctx context.Context, email, password string) result.Result[models.AuthResponse] {
	return call[models.AuthResponse](ctx, r, http.MethodPost, "/api/auth/login",
		models.AuthRequest{Email: email, Password: password})
}

// Register регистрирует нового пользователя.
func (r *Repository) Register(ctx context.Context, name, email, password, birthDate string) result.Result[models.AuthResponse] {
	return call[models.AuthResponse](ctx, r, http.MethodPost, "/api/auth/register",
		models.RegisterRequest{Name: name, Email: email, Password: password, BirthDate: birthDate})
}

// ConfirmSecondaryLogin подтверждает вход на другом устройстве по короткому коду.
func (r *Repository) ConfirmSecondaryLogin(ctx context.Context, code string) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodPost, "/api/auth/qr-confirm",
		models.QrConfirmRequest{Code: code})
}

// FetchProfile загружает профиль пользователя.
func (r *Repository) FetchProfile(ctx context.Context) result.Result[models.UserProfile] {
	res := call[models.ProfileResponse](ctx, r, http.MethodGet, "/api/user/profile", nil)
	if !res.IsSuccess() {
		return forward[models.ProfileResponse, models.UserProfile](res)
	}
	payload := res.Value().Profile
	if payload == nil {
		return result.Failure[models.UserProfile]("empty response", 0)
	}
	return result.Success(payload.ToDomain())
}

// UpdateProfile изменяет имя, почту и телефон пользователя.
func (r *Repository) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodPut, "/api/user/profile", req)
}

// FetchPreferences загружает настройки уведомлений.
func (r *Repository) FetchPreferences(ctx context.Context) result.Result[[]models.Preference] {
	res := call[models.PreferencesResponse](ctx, r, http.MethodGet, "/api/user/preferences", nil)
	if !res.IsSuccess() {
		return forward[models.PreferencesResponse, []models.Preference](res)
	}
	prefs := make([]models.Preference, 0, len(res.Value().Preferences))
	for _, item := range res.Value().Preferences {
		prefs = append(prefs, models.Preference{Type: item.Type, Enabled: item.Enabled == 1})
	}
	return result.Success(prefs)
}

// UpdatePreferences изменяет настройки уведомлений.
func (r *Repository) UpdatePreferences(ctx context.Context, req models.UpdatePreferencesRequest) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodPut, "/api/user/preferences", req)
}

// UpdatePassword меняет пароль. Тело успешного ответа не ожидается.
func (r *Repository) UpdatePassword(ctx context.Context, req models.UpdatePasswordRequest) result.Result[struct{}] {
	return callEmpty(ctx, r, http.MethodPut, "/api/user/password", req)
}

// FetchStats загружает статистику использования.
func (r *Repository) FetchStats(ctx context.Context) result.Result[models.UserStats] {
	res := call[models.StatsPayload](ctx, r, http.MethodGet, "/api/user/stats", nil)
	if !res.IsSuccess() {
		return forward[models.StatsPayload, models.UserStats](res)
	}
	return result.Success(res.Value().ToDomain())
}

// FetchProducts загружает список отслеживаемых товаров.
func (r *Repository) FetchProducts(ctx context.Context) result.Result[[]models.Product] {
	res := call[models.ProductsResponse](ctx, r, http.MethodGet, "/api/produtos", nil)
	if !res.IsSuccess() {
		return forward[models.ProductsResponse, []models.Product](res)
	}
	products := make([]models.Product, 0, len(res.Value().Products))
	for _, payload := range res.Value().Products {
		products = append(products, payload.ToDomain())
	}
	return result.Success(products)
}

// CreateProduct добавляет товар к отслеживанию.
func (r *Repository) CreateProduct(ctx context.Context, req models.CreateProductRequest) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodPost, "/api/produtos", req)
}

// UpdateProduct изменяет товар по идентификатору.
func (r *Repository) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodPut, "/api/produtos/"+id, req)
}

// DeleteProduct прекращает отслеживание товара.
func (r *Repository) DeleteProduct(ctx context.Context, id string) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodDelete, "/api/produtos/"+id, nil)
}

// ExportProductsExcel выгружает список товаров в Excel
// и возвращает путь к сохранённому файлу.
func (r *Repository) ExportProductsExcel(ctx context.Context) result.Result[string] {
	return r.downloadToCache(ctx, "/api/exportar/produtos/excel", "promoping-products.xlsx")
}

// ExportProductsPDF выгружает список товаров в PDF.
func (r *Repository) ExportProductsPDF(ctx context.Context) result.Result[string] {
	return r.downloadToCache(ctx, "/api/exportar/produtos/pdf", "promoping-products.pdf")
}

// ExportFullReport выгружает полный отчёт.
func (r *Repository) ExportFullReport(ctx context.Context) result.Result[string] {
	return r.downloadToCache(ctx, "/api/exportar/relatorio/completo", "promoping-full-report")
}

// DeactivateAccount деактивирует учётную запись.
func (r *Repository) DeactivateAccount(ctx context.Context) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodPost, "/api/user/deactivate", nil)
}

// DeleteAccount безвозвратно удаляет учётную запись.
func (r *Repository) DeleteAccount(ctx context.Context) result.Result[models.APIMessage] {
	return call[models.APIMessage](ctx, r, http.MethodDelete, "/api/user/delete", nil)
}

// StaticPlans возвращает статический каталог тарифных планов.
// Каталог зашит в клиент, сервер не опрашивается.
func (r *Repository) StaticPlans() []models.Plan {
	return []models.Plan{
		{Name: "Free", MonthlyPrice: 0, AnnualPrice: 0, ProductLimit: 5, CheckIntervalHours: 24, ExportsReports: false, Notes: "Current plan"},
		{Name: "Basic", MonthlyPrice: 6.99, AnnualPrice: 69, ProductLimit: 25, CheckIntervalHours: 12, ExportsReports: true, Notes: "Includes PDF and Excel"},
		{Name: "Standard", MonthlyPrice: 9.99, AnnualPrice: 99, ProductLimit: 75, CheckIntervalHours: 6, ExportsReports: true, Notes: "More frequent monitoring"},
		{Name: "Premium", MonthlyPrice: 14.99, AnnualPrice: 149, ProductLimit: 200, CheckIntervalHours: 2, ExportsReports: true, Notes: "Priority support"},
	}
}

// call выполняет JSON-операцию и нормализует исход по единым правилам:
// транспортная ошибка -> Failure(текст, 0); HTTP-ошибка -> Failure(разобранное
// сообщение, статус); успех с пустым телом -> Failure("empty response", 0).
func call[T any](ctx context.Context, r *Repository, method, path string, body any) result.Result[T] {
	resp, err := r.transport.DoJSON(ctx, method, path, body)
	if err != nil {
		return result.Failure[T](errMessage(err, "network failure"), 0)
	}
	if !isSuccess(resp.Status) {
		return result.Failure[T](parseError(resp.Status, resp.Body), resp.Status)
	}
	if len(resp.Body) == 0 {
		return result.Failure[T]("empty response", 0)
	}
	var value T
	if err := json.Unmarshal(resp.Body, &value); err != nil {
		return result.Failure[T](errMessage(err, "network failure"), 0)
	}
	return result.Success(value)
}

// callEmpty то же, что call, но для операций без тела успешного ответа.
func callEmpty(ctx context.Context, r *Repository, method, path string, body any) result.Result[struct{}] {
	resp, err := r.transport.DoJSON(ctx, method, path, body)
	if err != nil {
		return result.Failure[struct{}](errMessage(err, "network failure"), 0)
	}
	if !isSuccess(resp.Status) {
		return result.Failure[struct{}](parseError(resp.Status, resp.Body), resp.Status)
	}
	return result.Success(struct{}{})
}

// downloadToCache скачивает бинарный ответ в файл кеша с фиксированным именем.
// Тело ответа вычитывается до конца и закрывается на любом пути выхода.
func (r *Repository) downloadToCache(ctx context.Context, path, fileName string) result.Result[string] {
	status, body, err := r.transport.DoStream(ctx, http.MethodGet, path)
	if err != nil {
		return result.Failure[string](errMessage(err, "network failure"), 0)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}()

	if !isSuccess(status) {
		raw, readErr := io.ReadAll(io.LimitReader(body, 64<<10))
		if readErr != nil {
			return result.Failure[string](errMessage(readErr, "export failed"), status)
		}
		return result.Failure[string](parseError(status, raw), status)
	}

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return result.Failure[string](errMessage(err, "export failed"), 0)
	}
	target := filepath.Join(r.cacheDir, fileName)
	file, err := os.Create(target)
	if err != nil {
		return result.Failure[string](errMessage(err, "export failed"), 0)
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		return result.Failure[string](errMessage(err, "export failed"), 0)
	}
	if err := file.Close(); err != nil {
		return result.Failure[string](errMessage(err, "export failed"), 0)
	}
	r.log.Info("export saved", slog.String("file", target))
	return result.Success(target)
}

// parseError извлекает пользовательское сообщение из тела HTTP-ошибки.
// Приоритет: message, затем error, затем "Error <статус>";
// неразбираемое тело обрезается до первых 120 символов.
func parseError(status int, body []byte) string {
	if len(body) == 0 {
		return fmt.Sprintf("Error %d", status)
	}
	var apiErr models.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		// Обрезка по рунам: срез по байтам разрезал бы многобайтовый символ.
		preview := []rune(string(body))
		if len(preview) > errorBodyPreviewLimit {
			preview = preview[:errorBodyPreviewLimit]
		}
		return string(preview)
	}
	switch {
	case apiErr.Message != "":
		return apiErr.Message
	case apiErr.Error != "":
		return apiErr.Error
	default:
		return fmt.Sprintf("Error %d", status)
	}
}

// forward переносит ошибку или состояние загрузки в результат другого типа.
func forward[T, U any](r result.Result[T]) result.Result[U] {
	if r.IsLoading() {
		return result.Loading[U]()
	}
	return result.Failure[U](r.Message(), r.StatusCode())
}

func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
