package logx

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestResolveLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		conf Config
		want zerolog.Level
	}{
		{name: "default info", conf: Config{}, want: zerolog.InfoLevel},
		{name: "debug flag", conf: Config{Debug: true}, want: zerolog.DebugLevel},
		{name: "explicit level wins", conf: Config{Debug: true, Level: "WARN"}, want: zerolog.WarnLevel},
		{name: "invalid level falls back", conf: Config{Level: "loud"}, want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := resolveLevel(&tt.conf); got != tt.want {
				t.Fatalf("resolveLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
