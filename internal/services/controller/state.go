// Package controller реализует контроллер состояния приложения:
// машину состояний аутентификации и пять независимых наблюдаемых
// записей UI-состояния поверх данных фасада API.
package controller

import (
	"context"
	"sync"

	"github.com/promoping/promoping-client/internal/models"
)

// AuthState состояние аутентификации.
// IsAuthenticated истинно тогда и только тогда, когда токен непуст;
// поле выставляется только подпиской на хранилище сессии.
type AuthState struct {
	IsAuthenticated bool                // Есть ли активная сессия
	Token           string              // Текущий bearer-токен ("" — нет)
	Loading         bool                // Выполняется ли вход или регистрация
	Error           string              // Ошибка последней операции ("" — нет)
	User            *models.UserProfile // Профиль из последнего успешного ответа
}

// DashboardState состояние главного экрана.
type DashboardState struct {
	Stats    *models.UserStats // Статистика использования
	Products []models.Product  // Товары для сводки
	Loading  bool
	Error    string
}

// ProductsState состояние списка товаров с полями фильтра.
// Отфильтрованный список не хранится: он всегда вычисляется
// функцией Filtered от Items и текущего фильтра.
type ProductsState struct {
	Items        []models.Product // Полный список с сервера
	Query        string           // Подстрока поиска по названию
	StoreFilter  string           // Фильтр по магазину ("" — все)
	StatusFilter string           // Фильтр по состоянию ("" — все)
	Loading      bool
	Error        string
}

// Filtered возвращает товары, проходящие текущий фильтр.
// Чистая проекция: повторное применение с тем же фильтром даёт тот же список.
func (s ProductsState) Filtered() []models.Product {
	filtered := make([]models.Product, 0, len(s.Items))
	for _, p := range s.Items {
		if p.Matches(s.Query, s.StoreFilter, s.StatusFilter) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// ProfileState состояние экрана профиля.
type ProfileState struct {
	Profile   *models.UserProfile
	Loading   bool
	Message   string // Сообщение об успехе последней операции
	Error     string
	QrLoading bool // Выполняется ли подтверждение входа на другом устройстве
}

// PlansState состояние каталога тарифных планов.
type PlansState struct {
	Plans         []models.Plan
	BillingAnnual bool // Выбрана ли годовая оплата (чисто презентационный флаг)
}

const stateBuffer = 16

// stateValue наблюдаемая запись состояния. Обновления применяются атомарной
// заменой всей записи; подписчики видят их в порядке применения, первым
// приходит текущее значение. Медленный подписчик теряет промежуточные
// значения, но всегда получает последнее.
type stateValue[T any] struct {
	mu      sync.Mutex
	value   T
	subs    map[int]chan T
	nextSub int
}

func newStateValue[T any](initial T) *stateValue[T] {
	return &stateValue[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Get возвращает текущее значение записи.
func (s *stateValue[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// set заменяет запись целиком и уведомляет подписчиков.
func (s *stateValue[T]) set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.notifyLocked()
}

// update применяет fn к текущей записи и сохраняет результат как новую запись.
func (s *stateValue[T]) update(fn func(T) T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = fn(s.value)
	s.notifyLocked()
}

func (s *stateValue[T]) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.value:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s.value:
			default:
			}
		}
	}
}

// watch возвращает канал значений записи; закрывается при отмене ctx.
func (s *stateValue[T]) watch(ctx context.Context) <-chan T {
	ch := make(chan T, stateBuffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.value
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		close(ch)
	}()
	return ch
}
