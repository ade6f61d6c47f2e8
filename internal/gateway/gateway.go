// Package gateway реализует исходящий HTTP-транспорт клиента.
//
// Шлюз на каждый запрос заново определяет базовый адрес API (переопределение
// по имени текущей сети или адрес по умолчанию) и подставляет актуальный
// bearer-токен из хранилища сессии. Повторов нет: каждый вызов — ровно одна
// попытка, исход которой передаётся вызывающему без изменений.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/promoping/promoping-client/internal/config"
	"github.com/promoping/promoping-client/internal/netinfo"
)

// TokenSource отдаёт актуальное значение bearer-токена ("" — токена нет).
// Значение читается в момент построения запроса, а не захватывается заранее.
type TokenSource interface {
	Token() string
}

// Response ответ сервера: HTTP-статус и прочитанное тело.
type Response struct {
	Status int
	Body   []byte
}

// Gateway исходящий HTTP-транспорт с подстановкой адреса и учётных данных.
type Gateway struct {
	client      *http.Client
	defaultBase string
	ssidBase    map[string]string
	inspector   netinfo.Inspector
	tokens      TokenSource
	limiter     *rate.Limiter
	log         *slog.Logger
	debugBodies bool
}

// New создаёт шлюз с таймаутами и адресами из конфига.
// Отладочное логирование тел запросов и ответов включается вне прода.
func New(cfg *config.Config, tokens TokenSource, inspector netinfo.Inspector, log *slog.Logger) *Gateway {
	limit := rate.Limit(cfg.RequestsPerSec)
	if limit <= 0 {
		limit = rate.Inf
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}
	return &Gateway{
		client:      &http.Client{Transport: transport},
		defaultBase: strings.TrimRight(cfg.APIBaseURL, "/"),
		ssidBase:    cfg.SSIDBaseURL,
		inspector:   inspector,
		tokens:      tokens,
		limiter:     rate.NewLimiter(limit, 1),
		log:         log,
		debugBodies: !cfg.IsProd(),
	}
}

// DoJSON выполняет запрос с JSON-телом (body может быть nil) и полностью
// читает тело ответа. HTTP-статусы любого рода — не ошибка этого уровня.
func (g *Gateway) DoJSON(ctx context.Context, method, path string, body any) (*Response, error) {
	const op = "gateway.DoJSON"

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	resp, err := g.do(ctx, method, path, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if g.debugBodies {
		g.log.Debug("response",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)))
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

// DoStream выполняет запрос и возвращает статус и нечитанное тело ответа.
// Закрыть тело обязан вызывающий на любом пути выхода.
func (g *Gateway) DoStream(ctx context.Context, method, path string) (int, io.ReadCloser, error) {
	const op = "gateway.DoStream"

	resp, err := g.do(ctx, method, path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp.StatusCode, resp.Body, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	url := g.resolveBaseURL(ctx) + path

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)

	// Токен читается здесь, в момент отправки, а не при создании шлюза.
	if token := g.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if g.debugBodies {
		g.log.Debug("request",
			slog.String("method", method),
			slog.String("url", url),
			slog.String("request_id", requestID),
			slog.String("body", string(payload)))
	} else {
		g.log.Info("request",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID))
	}

	return g.client.Do(req)
}

// resolveBaseURL выбирает базовый адрес API по имени текущей сети.
// Опрос сети выполняется на каждый запрос: активная сеть могла смениться.
func (g *Gateway) resolveBaseURL(ctx context.Context) string {
	ssid := g.inspector.CurrentSSID(ctx)
	if ssid != "" {
		if base, ok := g.ssidBase[ssid]; ok {
			g.log.Debug("base url override", slog.String("ssid", ssid), slog.String("base_url", base))
			return strings.TrimRight(base, "/")
		}
	}
	return g.defaultBase
}
