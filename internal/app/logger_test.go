package app

import (
	"log/slog"
	"testing"
)

func TestNewLoggerFormatSelection(t *testing.T) {
	cases := map[string]struct {
		cfg      *Config
		wantJSON bool
	}{
		"json":           {cfg: &Config{LogFormat: "json"}, wantJSON: true},
		"pretty default": {cfg: &Config{LogFormat: "pretty"}, wantJSON: false},
		"empty format":   {cfg: &Config{}, wantJSON: false},
		"nil config":     {cfg: nil, wantJSON: false},
		"unknown value":  {cfg: &Config{LogFormat: "xml"}, wantJSON: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			logger := NewLogger(tc.cfg)
			_, isJSON := logger.Handler().(*slog.JSONHandler)
			if isJSON != tc.wantJSON {
				t.Fatalf("LogFormat %+v: json handler = %v, want %v", tc.cfg, isJSON, tc.wantJSON)
			}
		})
	}
}
