package models

// Plan представляет тарифный план сервиса.
// Каталог планов статический и не запрашивается с сервера.
type Plan struct {
	Name               string  // Название плана
	MonthlyPrice       float64 // Цена за месяц
	AnnualPrice        float64 // Цена за год
	ProductLimit       int     // Максимум отслеживаемых товаров
	CheckIntervalHours int     // Интервал проверки цен в часах
	ExportsReports     bool    // Доступен ли экспорт отчётов
	Notes              string  // Краткое описание плана
	MonthlyLink        string  // Ссылка на оформление помесячной оплаты (опционально)
	AnnualLink         string  // Ссылка на оформление годовой оплаты (опционально)
}
