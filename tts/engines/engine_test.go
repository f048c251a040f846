package engines

import (
	"errors"
	"testing"

	"github.com/voxsync/voxsync/tts"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      tts.Config
		wantName string
		wantErr  error
	}{
		{
			name:     "mock engine",
			cfg:      tts.Config{Engine: "mock"},
			wantName: "mock",
		},
		{
			name:     "default engine",
			cfg:      tts.Config{},
			wantName: "mock",
		},
		{
			name:     "exec engine",
			cfg:      tts.Config{Engine: "exec", Exec: tts.ExecConfig{Command: "cat"}},
			wantName: "exec",
		},
		{
			name:     "exec falls back to mock when command missing",
			cfg:      tts.Config{Engine: "exec", Exec: tts.ExecConfig{Command: "voxsync-no-such-binary-445a"}},
			wantName: "mock",
		},
		{
			name:    "unknown engine",
			cfg:     tts.Config{Engine: "festival"},
			wantErr: tts.ErrUnknownEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if eng.Name() != tt.wantName {
				t.Errorf("engine = %q, want %q", eng.Name(), tt.wantName)
			}
		})
	}
}
