// Package netinfo определяет опрос имени текущей беспроводной сети.
// Имя используется только для выбора базового адреса API.
package netinfo

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = time.Second

// Inspector возвращает имя текущей беспроводной сети.
type Inspector interface {
	// CurrentSSID возвращает имя сети или "" если оно недоступно.
	// Вызов всегда возвращается быстро и никогда не блокирует надолго.
	CurrentSSID(ctx context.Context) string
}

// SystemInspector опрашивает систему через iwgetid.
// Переменная окружения PROMOPING_SSID имеет приоритет и позволяет
// задать имя сети вручную (тесты, машины без wifi).
type SystemInspector struct{}

// CurrentSSID реализует Inspector.
func (SystemInspector) CurrentSSID(ctx context.Context) string {
	if ssid := os.Getenv("PROMOPING_SSID"); ssid != "" {
		return ssid
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "iwgetid", "-r").Output()
	if err != nil {
		return ""
	}
	ssid := strings.TrimSpace(string(out))
	return strings.Trim(ssid, `"`)
}
