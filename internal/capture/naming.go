package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fallbackName is used when a window exposes neither title nor class.
const fallbackName = "window"

// sanitizer replaces characters that are illegal in filenames on common
// filesystems with underscores.
var sanitizer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// DisplayName derives the base file name for a window: its title, else its
// class, sanitized for filesystem use, else "window".
func DisplayName(sys WindowSystem, w Window) string {
	name, err := sys.Title(w)
	if err != nil || name == "" {
		name, _ = sys.Class(w)
	}
	name = sanitizer.Replace(name)
	if name == "" {
		name = fallbackName
	}
	return name
}

// AllocatePath returns a path for name under dir that does not collide with
// an existing file: "name.png", then "name-1.png", "name-2.png" and so on.
// The path is computed once per capture and never cached.
func AllocatePath(dir, name string) string {
	path := filepath.Join(dir, name+".png")
	if !pathExists(path) {
		return path
	}
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d.png", name, n))
		if !pathExists(candidate) {
			return candidate
		}
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
