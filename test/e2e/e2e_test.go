package e2e

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const binaryName = "modup"

var binaryPath string

// TestMain builds the binary before running tests
func TestMain(m *testing.M) {
	cmd := exec.Command("go", "build", "-o", binaryName, "../../cmd/modup")
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	binaryPath, _ = filepath.Abs(binaryName)

	code := m.Run()

	os.Remove(binaryName)

	os.Exit(code)
}

// moduleZip builds an in-memory module zip whose module.prop carries the
// given id, versionCode, and updateJson URL.
func moduleZip(t *testing.T, id string, versionCode int64, updateJSON string) []byte {
	t.Helper()

	prop := fmt.Sprintf("id=%s\nname=%s\nversion=v%d\nversionCode=%d\n", id, id, versionCode, versionCode)
	if updateJSON != "" {
		prop += "updateJson=" + updateJSON + "\n"
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("module.prop")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(prop)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// moduleServer serves an update descriptor plus the new zip for one module.
func moduleServer(t *testing.T, id string, remoteCode int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/update.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"versionCode": remoteCode,
			"version":     fmt.Sprintf("v%d", remoteCode),
			"zipUrl":      srv.URL + "/module.zip",
		})
	})
	mux.HandleFunc("/module.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(moduleZip(t, id, remoteCode, srv.URL+"/update.json"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// runModup runs the built binary with an isolated config home.
func runModup(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+filepath.Join(dir, "xdg"))
	out, err := cmd.CombinedOutput()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running %s: %v\n%s", binaryName, err, out)
	}
	return string(out), code
}

func TestUpdate_AppliesNewVersion(t *testing.T) {
	dir := t.TempDir()
	srv := moduleServer(t, "magiskhide", 5)

	target := filepath.Join(dir, "magiskhide.zip")
	if err := os.WriteFile(target, moduleZip(t, "magiskhide", 3, srv.URL+"/update.json"), 0644); err != nil {
		t.Fatalf("write module zip: %v", err)
	}

	out, code := runModup(t, dir, "update", dir)
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "updated") {
		t.Errorf("output missing update line:\n%s", out)
	}
	if !strings.Contains(out, "=== batch complete ===") {
		t.Errorf("output missing batch marker:\n%s", out)
	}

	if _, err := os.Stat(target + ".bak"); err != nil {
		t.Errorf("backup not created: %v", err)
	}
}

func TestUpdate_UpToDate(t *testing.T) {
	dir := t.TempDir()
	srv := moduleServer(t, "busybox", 4)

	target := filepath.Join(dir, "busybox.zip")
	if err := os.WriteFile(target, moduleZip(t, "busybox", 4, srv.URL+"/update.json"), 0644); err != nil {
		t.Fatalf("write module zip: %v", err)
	}

	out, code := runModup(t, dir, "update", dir)
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("output missing up-to-date line:\n%s", out)
	}
	if _, err := os.Stat(target + ".bak"); !os.IsNotExist(err) {
		t.Error("no backup expected when nothing changes")
	}
}

func TestUpdate_JSONReport(t *testing.T) {
	dir := t.TempDir()
	srv := moduleServer(t, "zygisk", 9)

	if err := os.WriteFile(filepath.Join(dir, "zygisk.zip"), moduleZip(t, "zygisk", 2, srv.URL+"/update.json"), 0644); err != nil {
		t.Fatalf("write module zip: %v", err)
	}

	out, code := runModup(t, dir, "update", dir, "--output", "json")
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}

	var report struct {
		Scanned int `json:"scanned"`
		Updated int `json:"updated"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.Scanned != 1 || report.Updated != 1 {
		t.Errorf("report = %+v, want scanned=1 updated=1", report)
	}
}

func TestUpdate_FailureExitCode(t *testing.T) {
	dir := t.TempDir()

	// Descriptor URL points nowhere; checking the module must fail.
	if err := os.WriteFile(filepath.Join(dir, "broken.zip"), moduleZip(t, "broken", 1, "http://127.0.0.1:1/update.json"), 0644); err != nil {
		t.Fatalf("write module zip: %v", err)
	}

	out, code := runModup(t, dir, "update", dir)
	if code != 1 {
		t.Errorf("exit code = %d, want 1\n%s", code, out)
	}
}

func TestBackups_ListAndClean(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "foo.zip.bak"), []byte("old"), 0644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	out, code := runModup(t, dir, "backups", "list", dir)
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "foo.zip.bak") {
		t.Errorf("list output missing backup:\n%s", out)
	}

	out, code = runModup(t, dir, "backups", "clean", dir)
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "foo.zip.bak")); !os.IsNotExist(err) {
		t.Error("backup should have been deleted")
	}
}

func TestVersionCommand(t *testing.T) {
	out, code := runModup(t, t.TempDir(), "version")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "modup version") {
		t.Errorf("unexpected version output: %s", out)
	}
}
