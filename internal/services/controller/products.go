package controller

import (
	"context"
	"strings"

	"github.com/promoping/promoping-client/internal/models"
	"github.com/promoping/promoping-client/internal/result"
)

// LoadProducts запускает загрузку списка товаров.
func (c *Controller) LoadProducts() {
	go c.loadProducts(c.ctx)
}

// LoadStats запускает загрузку статистики.
func (c *Controller) LoadStats() {
	go c.loadStats(c.ctx)
}

// loadProducts загружает товары и обновляет записи товаров и главного экрана.
// Отменённая загрузка не пишет в состояние вообще: ни результат, ни флаг
// загрузки, иначе зависший флаг заблокирует следующую начальную загрузку.
func (c *Controller) loadProducts(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	c.products.update(func(s ProductsState) ProductsState {
		s.Loading = true
		s.Error = ""
		return s
	})

	res := c.api.FetchProducts(ctx)
	if ctx.Err() != nil {
		return
	}

	switch res.Kind() {
	case result.KindSuccess:
		items := res.Value()
		c.products.update(func(s ProductsState) ProductsState {
			s.Loading = false
			s.Items = items
			return s
		})
		c.dashboard.update(func(s DashboardState) DashboardState {
			s.Loading = false
			s.Products = items
			return s
		})
	case result.KindError:
		c.products.update(func(s ProductsState) ProductsState {
			s.Loading = false
			s.Error = res.Message()
			return s
		})
		c.dashboard.update(func(s DashboardState) DashboardState {
			s.Loading = false
			s.Error = res.Message()
			return s
		})
	case result.KindLoading:
		c.products.update(func(s ProductsState) ProductsState {
			s.Loading = true
			return s
		})
	}
}

func (c *Controller) loadStats(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	c.dashboard.update(func(s DashboardState) DashboardState {
		s.Loading = true
		s.Error = ""
		return s
	})

	res := c.api.FetchStats(ctx)
	if ctx.Err() != nil {
		return
	}

	switch res.Kind() {
	case result.KindSuccess:
		stats := res.Value()
		c.dashboard.update(func(s DashboardState) DashboardState {
			s.Loading = false
			s.Stats = &stats
			return s
		})
	case result.KindError:
		c.dashboard.update(func(s DashboardState) DashboardState {
			s.Loading = false
			s.Error = res.Message()
			return s
		})
	case result.KindLoading:
		c.dashboard.update(func(s DashboardState) DashboardState {
			s.Loading = true
			return s
		})
	}
}

// AddProduct добавляет товар к отслеживанию. Сервер — источник истины:
// на успех список перезагружается целиком, локального слияния нет.
func (c *Controller) AddProduct(name, link, deadlineDate string, targetPrice float64) {
	c.products.update(func(s ProductsState) ProductsState {
		s.Loading = true
		s.Error = ""
		return s
	})

	req := models.CreateProductRequest{
		Name:         strings.TrimSpace(name),
		Link:         strings.TrimSpace(link),
		DeadlineDate: deadlineDate,
		TargetPrice:  targetPrice,
	}
	if err := c.validate.Struct(req); err != nil {
		c.products.update(func(s ProductsState) ProductsState {
			s.Loading = false
			s.Error = "invalid product data"
			return s
		})
		return
	}

	go func() {
		res := c.api.CreateProduct(c.ctx, req)
		switch res.Kind() {
		case result.KindSuccess:
			c.loadProducts(c.ctx)
		case result.KindError:
			c.products.update(func(s ProductsState) ProductsState {
				s.Loading = false
				s.Error = res.Message()
				return s
			})
		case result.KindLoading:
			c.products.update(func(s ProductsState) ProductsState {
				s.Loading = true
				return s
			})
		}
	}()
}

// UpdateProduct изменяет товар и на успех перезагружает список.
func (c *Controller) UpdateProduct(id string, req models.UpdateProductRequest) {
	go func() {
		res := c.api.UpdateProduct(c.ctx, id, req)
		switch res.Kind() {
		case result.KindSuccess:
			c.loadProducts(c.ctx)
		case result.KindError:
			c.products.update(func(s ProductsState) ProductsState {
				s.Error = res.Message()
				return s
			})
		case result.KindLoading:
		}
	}()
}

// DeleteProduct прекращает отслеживание товара и на успех перезагружает список.
func (c *Controller) DeleteProduct(id string) {
	c.products.update(func(s ProductsState) ProductsState {
		s.Loading = true
		return s
	})

	go func() {
		res := c.api.DeleteProduct(c.ctx, id)
		switch res.Kind() {
		case result.KindSuccess:
			c.loadProducts(c.ctx)
		case result.KindError:
			c.products.update(func(s ProductsState) ProductsState {
				s.Loading = false
				s.Error = res.Message()
				return s
			})
		case result.KindLoading:
		}
	}()
}

// UpdateFilters меняет только поля фильтра; список с сервера не запрашивается.
func (c *Controller) UpdateFilters(query, store, status string) {
	c.products.update(func(s ProductsState) ProductsState {
		s.Query = query
		s.StoreFilter = store
		s.StatusFilter = status
		return s
	})
}

// ToggleBilling переключает помесячную и годовую оплату в каталоге планов.
// Чисто презентационное состояние, сервер не затрагивается.
func (c *Controller) ToggleBilling() {
	c.plans.update(func(s PlansState) PlansState {
		s.BillingAnnual = !s.BillingAnnual
		return s
	})
}
