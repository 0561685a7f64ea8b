package cli

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutview/pkg/odb/memdb"
	"github.com/matzehuels/layoutview/pkg/odb/memdb/memdbtest"
	"github.com/matzehuels/layoutview/pkg/snapshot"
)

func exploreDesign(t *testing.T) *snapshot.Design {
	t.Helper()
	d, err := snapshot.NewBuilder(memdb.Decoder{}, log.New(io.Discard)).Build(memdbtest.Load(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { d.Release() })
	return d
}

func press(m exploreModel, keys ...string) exploreModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(exploreModel)
	}
	return m
}

func TestExploreNavigation(t *testing.T) {
	d := exploreDesign(t)
	m := newExploreModel(d)

	tests := []struct {
		name       string
		keys       []string
		wantTab    exploreTab
		wantCursor int
	}{
		{"start", nil, tabInstances, 0},
		{"down", []string{"down"}, tabInstances, 1},
		{"clamped at end", []string{"j", "j", "j", "j", "j"}, tabInstances, len(d.Instances) - 1},
		{"clamped at start", []string{"up", "k"}, tabInstances, 0},
		{"end key", []string{"G"}, tabInstances, len(d.Instances) - 1},
		{"next tab keeps own cursor", []string{"j", "tab"}, tabNets, 0},
		{"wraps backwards", []string{"shift+tab"}, tabLayers, 0},
		{"layer cursor", []string{"shift+tab", "j"}, tabLayers, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(m, tt.keys...)
			if got.tab != tt.wantTab {
				t.Errorf("tab = %v, want %v", got.tab, tt.wantTab)
			}
			if c := got.cursor[got.tab]; c != tt.wantCursor {
				t.Errorf("cursor = %d, want %d", c, tt.wantCursor)
			}
		})
	}
}

func TestExploreScrolls(t *testing.T) {
	m := newExploreModel(exploreDesign(t))
	m.height = 2

	m = press(m, "j", "j")
	if m.offset[tabInstances] != 1 {
		t.Errorf("offset = %d, want 1 after moving past the window", m.offset[tabInstances])
	}
	m = press(m, "g")
	if m.offset[tabInstances] != 0 || m.cursor[tabInstances] != 0 {
		t.Errorf("home: cursor %d offset %d, want 0 0", m.cursor[tabInstances], m.offset[tabInstances])
	}
}

func TestExploreQuit(t *testing.T) {
	m := newExploreModel(exploreDesign(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestExploreView(t *testing.T) {
	d := exploreDesign(t)
	m := newExploreModel(d)

	view := m.View()
	for _, want := range []string{"synth_top", "Instances (3)", "Nets (4)", "Layers (3)", d.Instances[0].Name} {
		if !strings.Contains(view, want) {
			t.Errorf("instances view missing %q", want)
		}
	}

	view = press(m, "tab").View()
	if !strings.Contains(view, "n_mid") {
		t.Error("nets view missing n_mid")
	}

	view = press(m, "shift+tab").View()
	if !strings.Contains(view, "metal2 (M2)") {
		t.Error("layers view missing aliased metal2")
	}
}
