package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NetroScript/tf2pickup-server/internal/model"
)

func TestUpdatePlayerRequestRole(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantRole *model.Role
		wantName *string
	}{
		{"absent role", `{"name":"maly"}`, nil, ptr("maly")},
		{"null role clears", `{"role":null}`, ptr(model.RoleNone), nil},
		{"explicit role", `{"role":"admin"}`, ptr(model.RoleAdmin), nil},
		{"null name ignored", `{"name":null}`, nil, nil},
		{"empty object", `{}`, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdatePlayerRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.wantRole, req.Role)
			assert.Equal(t, tt.wantName, req.Name)
		})
	}
}

func TestUpdatePlayerRequestRejectsWrongTypes(t *testing.T) {
	var req UpdatePlayerRequest
	assert.Error(t, json.Unmarshal([]byte(`{"role":5}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"name":true}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &req))
}

func TestRegisterPlayerRequestToSteamProfile(t *testing.T) {
	req := RegisterPlayerRequest{SteamID: "76561198000000001", DisplayName: "maly", Photos: []string{"a.jpg", "b.jpg"}}

	profile := req.ToSteamProfile()
	assert.Equal(t, "76561198000000001", profile.ID)
	assert.Equal(t, "a.jpg", profile.AvatarURL())
}

func ptr[T any](v T) *T {
	return &v
}
