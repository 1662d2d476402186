package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Driver != DriverPostgres {
		t.Fatalf("driver = %q, want %q", cfg.DB.Driver, DriverPostgres)
	}
	if cfg.Scheduler != DefaultScheduler() {
		t.Fatalf("scheduler = %+v, want %+v", cfg.Scheduler, DefaultScheduler())
	}
	if cfg.GRPCAddr != ":50051" {
		t.Fatalf("grpc addr = %q", cfg.GRPCAddr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("SLOT_INTERVAL_MIN", "15")
	t.Setenv("MAX_PARTY_SIZE", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Driver != DriverSQLite || cfg.DB.SQLitePath != "/tmp/test.db" {
		t.Fatalf("unexpected db config: %+v", cfg.DB)
	}
	if cfg.Scheduler.SlotIntervalMin != 15 {
		t.Fatalf("slot interval = %d, want 15", cfg.Scheduler.SlotIntervalMin)
	}
	if cfg.Scheduler.MaxPartySize != 12 {
		t.Fatalf("max party size = %d, want 12", cfg.Scheduler.MaxPartySize)
	}
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{DB: DBConfig{Driver: "oracle"}, Scheduler: DefaultScheduler()}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestValidate_RejectsNonPositiveSlotCap(t *testing.T) {
	s := DefaultScheduler()
	s.MaxSlotsPerDay = 0
	cfg := &Config{DB: DBConfig{Driver: DriverSQLite, SQLitePath: "x.db"}, Scheduler: s}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero slot cap")
	}
}

func TestValidate_RejectsInvertedPartyBounds(t *testing.T) {
	s := DefaultScheduler()
	s.MinPartySize = 5
	s.MaxPartySize = 2
	cfg := &Config{DB: DBConfig{Driver: DriverSQLite, SQLitePath: "x.db"}, Scheduler: s}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for inverted party bounds")
	}
}
