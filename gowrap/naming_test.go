package gowrap

import "testing"

func TestParseMarker(t *testing.T) {
	tests := []struct {
		line string
		want marker
		ok   bool
	}{
		{"//capscript:expose", marker{kind: "expose"}, true},
		{"//capscript:expose Describe", marker{kind: "expose", name: "Describe"}, true},
		{"//capscript:property", marker{kind: "property"}, true},
		{"//capscript:property  HP ", marker{kind: "property", name: "HP"}, true},
		{"//capscript:exposed", marker{}, false},
		{"// capscript:expose", marker{}, false},
		{"// Heal restores health.", marker{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseMarker(tt.line)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseMarker(%q) = %+v, %v; want %+v, %v", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"host type func", HostTypeFuncName("Player"), "PlayerHostType"},
		{"setter", SetterName("Health"), "SetHealth"},
		{"file", OutputFileName("game"), "game_capscript.go"},
		{"file hyphen", OutputFileName("my-game"), "my_game_capscript.go"},
		{"package", OutputPackageName("game"), "capscript_game"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
