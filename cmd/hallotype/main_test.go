package main

import (
	"testing"

	"github.com/hello97-gg/hallotype/internal/model"
)

func TestApplyRaceMutePrecedence(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name  string
		args  []string
		prefs model.Prefs
		cfg   *bool
		want  bool
	}{
		{name: "stored preference applies", prefs: model.Prefs{Muted: true}, want: true},
		{name: "config overrides preference", prefs: model.Prefs{Muted: true}, cfg: boolPtr(false), want: false},
		{name: "flag overrides both", args: []string{"--mute"}, cfg: boolPtr(false), want: true},
		{name: "defaults to sound on", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raceMute = false
			cmd := newRaceCmd()
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			applyRaceMute(cmd, tt.prefs, tt.cfg)
			if raceMute != tt.want {
				t.Errorf("raceMute = %v, want %v", raceMute, tt.want)
			}
		})
	}
}
