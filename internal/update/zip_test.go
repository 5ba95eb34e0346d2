package update

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// moduleZipBytes builds an in-memory module zip with the given module.prop
// content and a filler payload entry.
func moduleZipBytes(t *testing.T, prop string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	pw, err := w.Create("module.prop")
	if err != nil {
		t.Fatalf("create module.prop: %v", err)
	}
	if _, err := pw.Write([]byte(prop)); err != nil {
		t.Fatalf("write module.prop: %v", err)
	}

	sw, err := w.Create("service.sh")
	if err != nil {
		t.Fatalf("create service.sh: %v", err)
	}
	if _, err := sw.Write([]byte("#!/system/bin/sh\n")); err != nil {
		t.Fatalf("write service.sh: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// writeModuleZip writes a module zip to path.
func writeModuleZip(t *testing.T, path, prop string) {
	t.Helper()
	if err := os.WriteFile(path, moduleZipBytes(t, prop), 0644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
}

// stagingLeftovers returns any modup staging files remaining in dir.
func stagingLeftovers(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var leftovers []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "modup-") {
			leftovers = append(leftovers, filepath.Join(dir, e.Name()))
		}
	}
	return leftovers
}
