package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SATZBAU_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("SATZBAU_DB", "")
	t.Setenv("SATZBAU_LOG_LEVEL", "")
	t.Setenv("SATZBAU_VOCAB_PATH", "")

	cfg := Load()
	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", cfg.Addr)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want INFO", cfg.LogLevel)
	}
	if cfg.DBPath != "" || cfg.VocabPath != "" {
		t.Errorf("expected empty paths, got %+v", cfg)
	}
}

func TestLoad_Addr(t *testing.T) {
	tests := []struct {
		name string
		addr string
		port string
		want string
	}{
		{"explicit addr wins", "127.0.0.1:9000", "8080", "127.0.0.1:9000"},
		{"bare port", "", "8080", ":8080"},
		{"port with host", "", "0.0.0.0:8080", "0.0.0.0:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SATZBAU_ADDR", tt.addr)
			t.Setenv("PORT", tt.port)
			if got := Load().Addr; got != tt.want {
				t.Fatalf("Addr = %q, want %q", got, tt.want)
			}
		})
	}
}
