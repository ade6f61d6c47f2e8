package controller

import (
	"context"
	"strings"

	"github.com/promoping/promoping-client/internal/models"
	"github.com/promoping/promoping-client/internal/result"
)

// LoadProfile запускает загрузку профиля пользователя.
func (c *Controller) LoadProfile() {
	go c.loadProfile(c.ctx)
}

func (c *Controller) loadProfile(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	c.profile.update(func(s ProfileState) ProfileState {
		s.Loading = true
		s.Error = ""
		s.Message = ""
		return s
	})

	res := c.api.FetchProfile(ctx)
	if ctx.Err() != nil {
		return
	}

	switch res.Kind() {
	case result.KindSuccess:
		profile := res.Value()
		c.profile.update(func(s ProfileState) ProfileState {
			s.Loading = false
			s.Profile = &profile
			return s
		})
		c.auth.update(func(s AuthState) AuthState {
			s.User = &profile
			return s
		})
	case result.KindError:
		c.profile.update(func(s ProfileState) ProfileState {
			s.Loading = false
			s.Error = res.Message()
			return s
		})
	case result.KindLoading:
		c.profile.update(func(s ProfileState) ProfileState {
			s.Loading = true
			return s
		})
	}
}

// SaveProfile сохраняет имя, почту и телефон; ненулевые флаги уведомлений
// отправляются отдельным запросом настроек. На успех профиль перечитывается
// с сервера.
func (c *Controller) SaveProfile(name, email, phone string, emailNotif, discordNotif *bool) {
	req := models.UpdateProfileRequest{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: phone,
	}
	if err := c.validate.Struct(req); err != nil {
		c.profile.update(func(s ProfileState) ProfileState {
			s.Error = "invalid profile data"
			s.Message = ""
			return s
		})
		return
	}

	go func() {
		res := c.api.UpdateProfile(c.ctx, req)
		if res.IsError() {
			c.profile.update(func(s ProfileState) ProfileState {
				s.Error = res.Message()
				return s
			})
			return
		}
		if !res.IsSuccess() {
			return
		}

		if emailNotif != nil || discordNotif != nil {
			prefs := models.UpdatePreferencesRequest{}
			if emailNotif != nil {
				prefs.Preferences = append(prefs.Preferences, models.PreferenceUpdate{Type: "email", Enabled: *emailNotif})
			}
			if discordNotif != nil {
				prefs.Preferences = append(prefs.Preferences, models.PreferenceUpdate{Type: "discord", Enabled: *discordNotif})
			}
			if prefRes := c.api.UpdatePreferences(c.ctx, prefs); prefRes.IsError() {
				c.profile.update(func(s ProfileState) ProfileState {
					s.Error = prefRes.Message()
					return s
				})
				return
			}
		}

		c.profile.update(func(s ProfileState) ProfileState {
			s.Message = "profile updated"
			s.Error = ""
			return s
		})
		c.loadProfile(c.ctx)
	}()
}

// ChangePassword меняет пароль пользователя.
func (c *Controller) ChangePassword(current, newPassword, confirmation string) {
	req := models.UpdatePasswordRequest{
		CurrentPassword: current,
		NewPassword:     newPassword,
		Confirmation:    confirmation,
	}
	if err := c.validate.Struct(req); err != nil {
		c.profile.update(func(s ProfileState) ProfileState {
			s.Error = "invalid password data"
			s.Message = ""
			return s
		})
		return
	}
	if newPassword != confirmation {
		c.profile.update(func(s ProfileState) ProfileState {
			s.Error = "password confirmation does not match"
			s.Message = ""
			return s
		})
		return
	}

	go func() {
		res := c.api.UpdatePassword(c.ctx, req)
		switch res.Kind() {
		case result.KindSuccess:
			c.profile.update(func(s ProfileState) ProfileState {
				s.Message = "password changed"
				s.Error = ""
				return s
			})
		case result.KindError:
			c.profile.update(func(s ProfileState) ProfileState {
				s.Error = res.Message()
				return s
			})
		case result.KindLoading:
		}
	}()
}

// ExportExcel выгружает список товаров в Excel.
func (c *Controller) ExportExcel() {
	c.runExport(c.api.ExportProductsExcel)
}

// ExportPDF выгружает список товаров в PDF.
func (c *Controller) ExportPDF() {
	c.runExport(c.api.ExportProductsPDF)
}

// ExportFullReport выгружает полный отчёт.
func (c *Controller) ExportFullReport() {
	c.runExport(c.api.ExportFullReport)
}

func (c *Controller) runExport(export func(ctx context.Context) result.Result[string]) {
	c.profile.update(func(s ProfileState) ProfileState {
		s.Loading = true
		s.Message = ""
		s.Error = ""
		return s
	})

	go func() {
		res := export(c.ctx)
		switch res.Kind() {
		case result.KindSuccess:
			c.profile.update(func(s ProfileState) ProfileState {
				s.Loading = false
				s.Message = "file saved to " + res.Value()
				return s
			})
		case result.KindError:
			c.profile.update(func(s ProfileState) ProfileState {
				s.Loading = false
				s.Error = res.Message()
				return s
			})
		case result.KindLoading:
			c.profile.update(func(s ProfileState) ProfileState {
				s.Loading = true
				return s
			})
		}
	}()
}

// DeactivateAccount деактивирует учётную запись; на успех выполняется выход.
func (c *Controller) DeactivateAccount() {
	c.runAccountRemoval(c.api.DeactivateAccount, "account deactivated")
}

// DeleteAccount удаляет учётную запись; на успех выполняется выход.
func (c *Controller) DeleteAccount() {
	c.runAccountRemoval(c.api.DeleteAccount, "account deleted")
}

func (c *Controller) runAccountRemoval(remove func(ctx context.Context) result.Result[models.APIMessage], fallbackMsg string) {
	c.profile.update(func(s ProfileState) ProfileState {
		s.Loading = true
		s.Message = ""
		s.Error = ""
		return s
	})

	go func() {
		res := remove(c.ctx)
		switch res.Kind() {
		case result.KindSuccess:
			msg := res.Value().Message
			if msg == "" {
				msg = fallbackMsg
			}
			c.profile.update(func(s ProfileState) ProfileState {
				s.Loading = false
				s.Message = msg
				return s
			})
			c.Logout()
		case result.KindError:
			c.profile.update(func(s ProfileState) ProfileState {
				s.Loading = false
				s.Error = res.Message()
				return s
			})
		case result.KindLoading:
			c.profile.update(func(s ProfileState) ProfileState {
				s.Loading = true
				return s
			})
		}
	}()
}
