package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductPayloadToDomain(t *testing.T) {
	raw := `{
		"status": "ok",
		"produtos": [
			{"Id": 42, "Nome": "Headset", "Link": "https://shop.example/h",
			 "PrecoAtual": 59.9, "PrecoAnterior": 79.9, "PrecoAlvo": 49.9,
			 "DataCriacao": "2026-01-10", "DataLimite": "2026-06-01",
			 "Loja": "Worten", "Estado": "active"}
		]
	}`

	var resp ProductsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Products, 1)

	p := resp.Products[0].ToDomain()
	assert.Equal(t, "42", p.ID, "remote numeric id becomes a string")
	assert.Equal(t, "Headset", p.Name)
	assert.Equal(t, "Worten", p.Store)
	require.NotNil(t, p.CurrentPrice)
	assert.InDelta(t, 59.9, *p.CurrentPrice, 1e-9)
	assert.Equal(t, "2026-01-10", p.AddedDate)
	assert.Equal(t, "2026-06-01", p.DeadlineDate)
}

func TestProfilePayloadToDomain_PreferenceFlags(t *testing.T) {
	payload := ProfilePayload{
		Name:  "Ana",
		Email: "ana@example.com",
		Preferences: []PreferenceItem{
			{Type: "Email", Enabled: 1},
			{Type: "discord", Enabled: 0},
			{Type: "sms", Enabled: 1},
		},
	}

	profile := payload.ToDomain()
	require.NotNil(t, profile.EmailNotifications)
	assert.True(t, *profile.EmailNotifications)
	require.NotNil(t, profile.DiscordNotifications)
	assert.False(t, *profile.DiscordNotifications)
}

func TestProfilePayloadToDomain_NoPreferences(t *testing.T) {
	profile := ProfilePayload{Name: "Ana", Email: "ana@example.com"}.ToDomain()

	assert.Nil(t, profile.EmailNotifications, "unknown preference stays nil, not false")
	assert.Nil(t, profile.DiscordNotifications)
}
