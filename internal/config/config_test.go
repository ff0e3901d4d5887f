package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %s, want 3000", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.RoomPublicLimit != 10 || cfg.RoomPrivateLimit != 10 {
		t.Errorf("limits = %d/%d, want 10/10", cfg.RoomPublicLimit, cfg.RoomPrivateLimit)
	}
	if cfg.PublicRoomLifetime != time.Hour {
		t.Errorf("PublicRoomLifetime = %v, want 1h", cfg.PublicRoomLifetime)
	}
	if cfg.PrivateRoomLifetime != 2*time.Hour {
		t.Errorf("PrivateRoomLifetime = %v, want 2h", cfg.PrivateRoomLifetime)
	}
	if cfg.WSMessageLimit != 16*1024 {
		t.Errorf("WSMessageLimit = %d, want 16384", cfg.WSMessageLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ROOM_PUBLIC_LIMIT", "3")
	t.Setenv("CHECK_PUBLIC_ROOMS_INTERVAL", "90s")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.RoomPublicLimit != 3 {
		t.Errorf("RoomPublicLimit = %d, want 3", cfg.RoomPublicLimit)
	}
	if cfg.CheckPublicRoomsInterval != 90*time.Second {
		t.Errorf("CheckPublicRoomsInterval = %v, want 90s", cfg.CheckPublicRoomsInterval)
	}
}

func TestDurationAcceptsMilliseconds(t *testing.T) {
	// Env files from the Node deployment carry bare millisecond integers.
	t.Setenv("PUBLIC_ROOM_LIFETIME", "3600000")

	cfg := Load()
	if cfg.PublicRoomLifetime != time.Hour {
		t.Errorf("PublicRoomLifetime = %v, want 1h", cfg.PublicRoomLifetime)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("ROOM_PUBLIC_LIMIT", "lots")
	t.Setenv("PUBLIC_ROOM_LIFETIME", "soon")

	cfg := Load()
	if cfg.RoomPublicLimit != 10 {
		t.Errorf("RoomPublicLimit = %d, want default 10", cfg.RoomPublicLimit)
	}
	if cfg.PublicRoomLifetime != time.Hour {
		t.Errorf("PublicRoomLifetime = %v, want default 1h", cfg.PublicRoomLifetime)
	}
}

func TestProductionRequiresAdminHash(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("ADMIN_HASH_ENCODED", "")

	defer func() {
		if recover() == nil {
			t.Error("expected panic without ADMIN_HASH_ENCODED in production")
		}
	}()
	Load()
}
