package models

// Wire-структуры обмена с сервером PromoPing.
//
// Имена JSON-полей зафиксированы контрактом сервера (частично на португальском)
// и намеренно не совпадают с доменными именами. Конвертация в доменные типы
// выполняется методами ToDomain, чтобы остальной код не знал о wire-формате.

import (
	"strconv"
	"strings"
)

// AuthRequest тело запроса входа.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Name      string `json:"nome"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"dataNascimento"`
}

// AuthResponse ответ на вход или регистрацию.
type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *UserPayload `json:"user"`
}

// QrConfirmRequest тело запроса подтверждения входа на другом устройстве.
type QrConfirmRequest struct {
	Code string `json:"code"`
}

// APIError структурированное тело ошибки сервера. Все поля опциональны.
type APIError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// APIMessage типовой успешный ответ с сообщением.
type APIMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UserPayload wire-представление пользователя в ответе авторизации.
type UserPayload struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	Email       string `json:"email"`
	Phone       string `json:"telefone"`
	MemberSince string `json:"membroDesde"`
}

// ToDomain конвертирует wire-представление пользователя в доменное.
func (u UserPayload) ToDomain() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		MemberSince: u.MemberSince,
	}
}

// PreferenceItem настройка уведомлений в wire-формате (Ativo приходит числом).
type PreferenceItem struct {
	Type    string `json:"Tipo"`
	Enabled int    `json:"Ativo"`
}

// PreferencesResponse ответ на запрос настроек уведомлений.
type PreferencesResponse struct {
	Status      string           `json:"status"`
	Preferences []PreferenceItem `json:"preferences"`
}

// UpdatePreferencesRequest тело запроса изменения настроек уведомлений.
type UpdatePreferencesRequest struct {
	Preferences []PreferenceUpdate `json:"preferences"`
}

// PreferenceUpdate одна изменяемая настройка уведомлений.
type PreferenceUpdate struct {
	Type    string `json:"tipo"`
	Enabled bool   `json:"ativo"`
}

// ProfilePayload wire-представление профиля в ответе /api/user/profile.
type ProfilePayload struct {
	Name        string           `json:"nome"`
	Email       string           `json:"email"`
	Phone       string           `json:"telefone"`
	Photo       string           `json:"FotoPerfil"`
	Preferences []PreferenceItem `json:"preferencias"`
}

// ProfileResponse конверт ответа профиля.
type ProfileResponse struct {
	Status  string          `json:"status"`
	Profile *ProfilePayload `json:"profile"`
}

// ToDomain конвертирует wire-профиль в доменный, разворачивая
// список преференций в отдельные флаги уведомлений.
func (p ProfilePayload) ToDomain() UserProfile {
	profile := UserProfile{
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
	}
	for _, pref := range p.Preferences {
		enabled := pref.Enabled == 1
		switch {
		case strings.EqualFold(pref.Type, "email"):
			v := enabled
			profile.EmailNotifications = &v
		case strings.EqualFold(pref.Type, "discord"):
			v := enabled
			profile.DiscordNotifications = &v
		}
	}
	return profile
}

// StatsPayload wire-представление статистики пользователя.
type StatsPayload struct {
	Products      int     `json:"produtos"`
	Notifications int     `json:"notificacoes"`
	Saved         float64 `json:"poupado"`
}

// ToDomain конвертирует wire-статистику в доменную.
func (s StatsPayload) ToDomain() UserStats {
	return UserStats{
		TotalProducts:      s.Products,
		TotalNotifications: s.Notifications,
		Saved:              s.Saved,
	}
}

// ProductPayload wire-представление товара в ответе /api/produtos.
// Сервер присылает PascalCase-поля и числовой Id.
type ProductPayload struct {
	ID            int      `json:"Id"`
	Name          string   `json:"Nome"`
	Link          string   `json:"Link"`
	CurrentPrice  *float64 `json:"PrecoAtual"`
	PreviousPrice *float64 `json:"PrecoAnterior"`
	TargetPrice   *float64 `json:"PrecoAlvo"`
	DeadlineDate  string   `json:"DataLimite"`
	CreatedDate   string   `json:"DataCriacao"`
	Store         string   `json:"Loja"`
	Status        string   `json:"Estado"`
}

// ProductsResponse конверт ответа списка товаров.
type ProductsResponse struct {
	Status   string           `json:"status"`
	Products []ProductPayload `json:"produtos"`
}

// ToDomain конвертирует wire-товар в доменный.
func (p ProductPayload) ToDomain() Product {
	return Product{
		ID:            strconv.Itoa(p.ID),
		Name:          p.Name,
		Link:          p.Link,
		Store:         p.Store,
		CurrentPrice:  p.CurrentPrice,
		PreviousPrice: p.PreviousPrice,
		TargetPrice:   p.TargetPrice,
		AddedDate:     p.CreatedDate,
		DeadlineDate:  p.DeadlineDate,
		Status:        p.Status,
	}
}

// CreateProductRequest тело запроса создания товара.
type CreateProductRequest struct {
	Name         string  `json:"nome" validate:"required"`
	Link         string  `json:"link" validate:"required,url"`
	DeadlineDate string  `json:"data,omitempty"`
	TargetPrice  float64 `json:"precoAlvo" validate:"required,gt=0"`
}

// UpdateProductRequest тело запроса изменения товара. Все поля опциональны,
// отсутствующие не меняются на сервере.
type UpdateProductRequest struct {
	Name         *string  `json:"nome,omitempty"`
	Link         *string  `json:"link,omitempty"`
	DeadlineDate *string  `json:"data,omitempty"`
	TargetPrice  *float64 `json:"precoAlvo,omitempty"`
}

// UpdateProfileRequest тело запроса изменения профиля.
type UpdateProfileRequest struct {
	Name  string `json:"nome" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"telefone,omitempty"`
}

// UpdatePasswordRequest тело запроса смены пароля.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"senhaAtual" validate:"required"`
	NewPassword     string `json:"novaSenha" validate:"required,min=6"`
	Confirmation    string `json:"confirmacao" validate:"required"`
}
