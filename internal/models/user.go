package models

// UserProfile представляет профиль авторизованного пользователя.
type UserProfile struct {
	ID                   string     // Идентификатор пользователя (может быть пустым)
	Name                 string     // Имя
	Email                string     // Электронная почта
	Phone                string     // Телефон (опционально)
	Plan                 *Plan      // Текущий тарифный план (nil, если сервер его не вернул)
	MemberSince          string     // Дата регистрации
	Stats                *UserStats // Статистика использования
	EmailNotifications   *bool      // Уведомления по почте (nil — сервер не сообщил)
	DiscordNotifications *bool      // Уведомления в Discord
}

// UserStats статистика использования сервиса.
type UserStats struct {
	TotalProducts      int     // Количество отслеживаемых товаров
	TotalNotifications int     // Количество отправленных уведомлений
	Saved              float64 // Сэкономленная сумма
}

// Preference настройка одного канала уведомлений.
type Preference struct {
	Type    string // Канал: email, discord
	Enabled bool   // Включён ли канал
}
