package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestConnection_ValidateForCreate(t *testing.T) {
	validConn := func() Connection {
		return Connection{
			TeamID: uuid.New(),
			Name:   "Landing page",
			Type:   ConnectionTypeWebsite,
		}
	}

	t.Run("valid connection passes", func(t *testing.T) {
		conn := validConn()
		if err := conn.ValidateForCreate(); err != nil {
			t.Errorf("ValidateForCreate() = %v, want nil", err)
		}
	})

	t.Run("empty status defaults to disconnected", func(t *testing.T) {
		conn := validConn()
		if err := conn.ValidateForCreate(); err != nil {
			t.Fatalf("ValidateForCreate() = %v", err)
		}
		if conn.Status != StatusDisconnected {
			t.Errorf("Status = %q, want %q", conn.Status, StatusDisconnected)
		}
	})

	t.Run("explicit status is kept", func(t *testing.T) {
		conn := validConn()
		conn.Status = StatusConnected
		if err := conn.ValidateForCreate(); err != nil {
			t.Fatalf("ValidateForCreate() = %v", err)
		}
		if conn.Status != StatusConnected {
			t.Errorf("Status = %q, want %q", conn.Status, StatusConnected)
		}
	})

	t.Run("all violations are reported together", func(t *testing.T) {
		conn := Connection{
			Type:   "telegram",
			Status: "offline",
		}
		err := conn.ValidateForCreate()
		if err == nil {
			t.Fatal("ValidateForCreate() = nil, want error")
		}

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error type = %T, want *ValidationError", err)
		}

		fields := make(map[string]bool)
		for _, v := range verr.Violations {
			fields[v.Field] = true
		}
		for _, want := range []string{"team_id", "name", "type", "status"} {
			if !fields[want] {
				t.Errorf("missing violation for field %q, got %v", want, verr.Violations)
			}
		}
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		conn := validConn()
		conn.Type = "telegram"
		if err := conn.ValidateForCreate(); err == nil {
			t.Error("ValidateForCreate() = nil, want error")
		}
	})
}

func TestConnectionUpdate_Validate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name    string
		update  ConnectionUpdate
		wantErr bool
	}{
		{
			name:    "empty update is valid",
			update:  ConnectionUpdate{},
			wantErr: false,
		},
		{
			name:    "name change",
			update:  ConnectionUpdate{Name: strPtr("New name")},
			wantErr: false,
		},
		{
			name:    "valid status change",
			update:  ConnectionUpdate{Status: strPtr(StatusConnected)},
			wantErr: false,
		},
		{
			name:    "empty name rejected",
			update:  ConnectionUpdate{Name: strPtr("")},
			wantErr: true,
		},
		{
			name:    "unknown status rejected",
			update:  ConnectionUpdate{Status: strPtr("offline")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnection_IsWidgetCapable(t *testing.T) {
	website := Connection{Type: ConnectionTypeWebsite}
	if !website.IsWidgetCapable() {
		t.Error("website connection should be widget capable")
	}

	whatsapp := Connection{Type: ConnectionTypeWhatsApp}
	if whatsapp.IsWidgetCapable() {
		t.Error("whatsapp connection should not be widget capable")
	}
}

func TestConnection_TypedConfigs(t *testing.T) {
	t.Run("website config", func(t *testing.T) {
		conn := Connection{
			Type: ConnectionTypeWebsite,
			Config: map[string]interface{}{
				"website_url": "https://example.com",
				"theme_color": "#336699",
			},
		}
		cfg := conn.GetWebsiteConfig()
		if cfg.WebsiteURL != "https://example.com" {
			t.Errorf("WebsiteURL = %q", cfg.WebsiteURL)
		}
		if cfg.ThemeColor != "#336699" {
			t.Errorf("ThemeColor = %q", cfg.ThemeColor)
		}
	})

	t.Run("missing keys come back empty", func(t *testing.T) {
		conn := Connection{Type: ConnectionTypeWebsite}
		if cfg := conn.GetWebsiteConfig(); cfg.WebsiteURL != "" {
			t.Errorf("WebsiteURL = %q, want empty", cfg.WebsiteURL)
		}
	})

	t.Run("whatsapp config", func(t *testing.T) {
		conn := Connection{
			Type: ConnectionTypeWhatsApp,
			Config: map[string]interface{}{
				"phone_number": "+5511999999999",
			},
		}
		if cfg := conn.GetWhatsAppConfig(); cfg.PhoneNumber != "+5511999999999" {
			t.Errorf("PhoneNumber = %q", cfg.PhoneNumber)
		}
	})
}
