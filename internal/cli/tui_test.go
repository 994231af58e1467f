package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/modmirror/pkg/config"
)

func pickerItems() []PickerItem {
	return []PickerItem{
		{Spec: config.RepoSpec{SourceID: "KieronQuinn/AmbientMusicMod"}, Version: "2.3"},
		{Spec: config.RepoSpec{SourceID: "tiann/KernelSU", FilePattern: "*apk", PinnedVersion: "v1.0.1"}},
		{Spec: config.RepoSpec{SourceID: "termux/termux-app", FilePattern: "*v8a*"}},
	}
}

func press(m RepoPickerModel, keys ...tea.KeyMsg) RepoPickerModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(RepoPickerModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyX     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
)

func sources(specs []config.RepoSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.SourceID
	}
	return out
}

func TestPickerStartsAllChecked(t *testing.T) {
	m := press(NewRepoPickerModel(pickerItems()), keyEnter)
	if got := m.Selected(); len(got) != 3 {
		t.Errorf("Selected() = %v, want all 3", sources(got))
	}
}

func TestPickerToggle(t *testing.T) {
	m := press(NewRepoPickerModel(pickerItems()), keyDown, keyX, keyEnter)
	got := sources(m.Selected())
	want := []string{"KieronQuinn/AmbientMusicMod", "termux/termux-app"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Selected() = %v, want %v", got, want)
	}
}

func TestPickerToggleAll(t *testing.T) {
	m := press(NewRepoPickerModel(pickerItems()), keyAll)
	if n := m.count(); n != 0 {
		t.Fatalf("after 'a' with all checked, %d checked, want 0", n)
	}
	m = press(m, keyAll)
	if n := m.count(); n != 3 {
		t.Fatalf("after second 'a', %d checked, want 3", n)
	}
}

func TestPickerCursorBounds(t *testing.T) {
	m := press(NewRepoPickerModel(pickerItems()), keyUp, keyDown, keyDown, keyDown, keyDown)
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", m.Cursor)
	}
}

func TestPickerScrolls(t *testing.T) {
	m := NewRepoPickerModel(pickerItems())
	m.Height = 2
	m = press(m, keyDown, keyDown)
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
	m = press(m, keyUp, keyUp)
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0", m.Offset)
	}
}

func TestPickerDismissSelectsNothing(t *testing.T) {
	m := press(NewRepoPickerModel(pickerItems()), keyEsc)
	if got := m.Selected(); got != nil {
		t.Errorf("Selected() after esc = %v, want nil", sources(got))
	}
}

func TestPickerView(t *testing.T) {
	m := press(NewRepoPickerModel(pickerItems()), keyX)
	view := m.View()
	for _, want := range []string{"Select Repositories", "tiann/KernelSU", "v1.0.1", "2.3", "2 of 3 selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestPickerEmpty(t *testing.T) {
	m := press(NewRepoPickerModel(nil), keyX, keyDown, keyEnter)
	if got := m.Selected(); len(got) != 0 {
		t.Errorf("Selected() = %v, want empty", sources(got))
	}
	_ = m.View()
}
