package web

import (
	"io/fs"
	"testing"
)

func TestStaticFSContainsAppShell(t *testing.T) {
	staticFS := GetStaticFS()

	for _, name := range []string{"index.html", "app.js"} {
		data, err := fs.ReadFile(staticFS, name)
		if err != nil {
			t.Errorf("missing static file %q: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("static file %q is empty", name)
		}
	}
}
