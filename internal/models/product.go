// Package models содержит доменные структуры клиента (товары, профиль, планы),
// а также wire-структуры для обмена JSON с удалённым сервисом.
// Поля wire-структур повторяют контракт сервера и не должны меняться
// без изменения контракта.
package models

import "strings"

// Product представляет отслеживаемый товар.
// Единственный источник истины — сервер: локально товар никогда не изменяется
// без подтверждающего запроса.
type Product struct {
	ID            string   // Идентификатор (строковая форма числового id сервера)
	Name          string   // Название товара
	Link          string   // Ссылка на страницу товара
	Store         string   // Магазин (может быть пустым)
	CurrentPrice  *float64 // Текущая цена (nil, если ещё не проверена)
	PreviousPrice *float64 // Предыдущая цена
	TargetPrice   *float64 // Целевая цена, заданная пользователем
	AddedDate     string   // Дата добавления (строка в формате сервера)
	DeadlineDate  string   // Дата окончания отслеживания
	Status        string   // Состояние отслеживания (active, reached, expired...)
}

// Matches сообщает, проходит ли товар фильтр из трёх условий:
// подстрока query в названии (без учёта регистра, пустая строка — всё подходит),
// равенство магазина и состояния (без учёта регистра, пустое значение — всё подходит).
func (p Product) Matches(query, store, status string) bool {
	if query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
		return false
	}
	if store != "" && !strings.EqualFold(p.Store, store) {
		return false
	}
	if status != "" && !strings.EqualFold(p.Status, status) {
		return false
	}
	return true
}
