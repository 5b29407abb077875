package mocutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const reflectiveCubeTOML = `
boundary = "reflective"

[[materials]]
handle = 1
name = "fuel"
sigma_t = [1.0]
sigma_a = [0.1]
nu_sig_f = [0.2]
chi = [1.0]
sigma_s = [[0.9]]

[[cells]]
user_id = 1
material = 1
x_min = -0.5
x_max = 0.5
y_min = -0.5
y_max = 0.5

[quadrature]
num_azimuthal = 4
ray_spacing = 0.1
sin_theta = [0.5]
weight = [1.0]
`

func writeTempGeometry(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geometry.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFileSolvesReflectiveCube(t *testing.T) {
	path := writeTempGeometry(t, reflectiveCubeTOML)
	cfg := InitializeConfig()
	cfg.Set("max_iterations", 500)
	cfg.Set("exponential_mode", "direct")

	var out bytes.Buffer
	if err := RunFile(cfg, path, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "k_eff=") {
		t.Fatalf("output missing k_eff summary: %q", out.String())
	}
}

func TestRunFileRejectsMissingMaterials(t *testing.T) {
	path := writeTempGeometry(t, `
boundary = "reflective"

[[cells]]
user_id = 1
material = 1
x_min = -0.5
x_max = 0.5
y_min = -0.5
y_max = 0.5

[quadrature]
num_azimuthal = 4
ray_spacing = 0.1
sin_theta = [0.5]
weight = [1.0]
`)
	cfg := InitializeConfig()
	var out bytes.Buffer
	if err := RunFile(cfg, path, &out); err == nil {
		t.Fatal("expected error for a geometry file with no materials")
	}
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Root.SetArgs([]string{"version"})
	var out bytes.Buffer
	cfg.Root.SetOutput(&out)
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), Version) {
		t.Fatalf("output missing version string: %q", out.String())
	}
}
