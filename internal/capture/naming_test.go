package capture

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		class string
		want  string
	}{
		{"plain title", "notes", "gedit", "notes"},
		{"illegal characters replaced", "a/b:c", "gedit", "a_b_c"},
		{"every illegal character", `a\b*c?d"e<f>g|h`, "", "a_b_c_d_e_f_g_h"},
		{"empty title falls back to class", "", "Edit", "Edit"},
		{"both empty falls back to default", "", "", "window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newFakeSystem()
			sys.add(1, &fakeWindow{title: tt.title, class: tt.class})

			got := DisplayName(sys, 1)
			if got != tt.want {
				t.Fatalf("DisplayName(%q, %q) = %q, want %q", tt.title, tt.class, got, tt.want)
			}
		})
	}
}

func TestDisplayNameForGoneWindow(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{title: "notes", gone: true})

	if got := DisplayName(sys, 1); got != "window" {
		t.Fatalf("DisplayName for a gone window = %q, want %q", got, "window")
	}
}

func TestAllocatePath(t *testing.T) {
	dir := t.TempDir()

	first := AllocatePath(dir, "shot")
	if want := filepath.Join(dir, "shot.png"); first != want {
		t.Fatalf("AllocatePath with no collision = %q, want %q", first, want)
	}

	touch(t, first)
	second := AllocatePath(dir, "shot")
	if want := filepath.Join(dir, "shot-1.png"); second != want {
		t.Fatalf("AllocatePath with one collision = %q, want %q", second, want)
	}

	touch(t, second)
	third := AllocatePath(dir, "shot")
	if want := filepath.Join(dir, "shot-2.png"); third != want {
		t.Fatalf("AllocatePath with two collisions = %q, want %q", third, want)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte{0}, 0644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}
