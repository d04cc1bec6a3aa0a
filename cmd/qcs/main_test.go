package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/qcs-runtime/configuration"
	"github.com/wippyai/qcs-runtime/rpcq"
)

const program = `DECLARE ro BIT[2]
DECLARE theta REAL[2]
RX(theta[0]) 0
MEASURE 0 ro[0]
MEASURE 1 ro[1]
`

func TestParamFlag(t *testing.T) {
	p := make(paramFlag)
	if err := p.Set("theta=0.5, 1"); err != nil {
		t.Fatal(err)
	}
	if err := p.Set("gain=2"); err != nil {
		t.Fatal(err)
	}
	want := paramFlag{"theta": {0.5, 1}, "gain": {2}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	for _, bad := range []string{"theta", "=1", "theta=a"} {
		if err := p.Set(bad); err == nil {
			t.Errorf("Set(%q) should fail", bad)
		}
	}
}

func writeProgram(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.quil")
	if err := os.WriteFile(path, []byte(program), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJobFromFlags(t *testing.T) {
	job, err := loadJob("", writeProgram(t), jobOptions{
		shots:    5,
		readouts: "ro, theta",
		qpu:      "Aspen-M-3",
		noQuilc:  true,
		params:   paramFlag{"theta": {1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if job.Shots != 5 || job.Compile || job.Target.String() != "qpu:Aspen-M-3" {
		t.Errorf("job = %+v", job)
	}
	if diff := cmp.Diff([]string{"ro", "theta"}, job.Readouts); diff != "" {
		t.Errorf("readouts (-want +got):\n%s", diff)
	}
}

func TestLoadJobRejectsShots(t *testing.T) {
	if _, err := loadJob("", writeProgram(t), jobOptions{shots: 0}); err == nil {
		t.Error("zero shots should fail")
	}
	if _, err := loadJob("", writeProgram(t), jobOptions{shots: 70000}); err == nil {
		t.Error("too many shots should fail")
	}
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Trials int `json:"trials"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		rows := make([][]int, req.Trials)
		for i := range rows {
			rows[i] = []int{1, 0}
		}
		json.NewEncoder(w).Encode(map[string][][]int{"ro": rows})
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv(configuration.SettingsPathVar, filepath.Join(dir, "settings.toml"))
	t.Setenv(configuration.SecretsPathVar, filepath.Join(dir, "secrets.toml"))
	t.Setenv(configuration.QVMURLVar, srv.URL)

	job, err := loadJob("", writeProgram(t), jobOptions{shots: 2, params: paramFlag{"theta": {0.5}}})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(&out, job); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "ro byte[2] x 2 shots\n  1 0\n  1 0\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestInteractiveApply(t *testing.T) {
	job, err := loadJob("", writeProgram(t), jobOptions{shots: 1})
	if err != nil {
		t.Fatal(err)
	}
	m, err := newInteractiveModel(job)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, f := range m.fields {
		names = append(names, f.name)
	}
	if diff := cmp.Diff([]string{"theta", "shots"}, names); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}

	m.inputs[0].SetValue("0.5, 1.5")
	m.inputs[1].SetValue("10")
	if err := m.apply(); err != nil {
		t.Fatal(err)
	}
	if m.exe.Shots() != 10 {
		t.Errorf("shots = %d", m.exe.Shots())
	}
	if diff := cmp.Diff([]float64{0.5, 1.5}, m.exe.Parameters()["theta"]); diff != "" {
		t.Errorf("theta (-want +got):\n%s", diff)
	}

	m.inputs[0].SetValue("1 2 3")
	if err := m.apply(); err == nil || !strings.Contains(err.Error(), "at most 2") {
		t.Errorf("err = %v", err)
	}
	m.inputs[0].SetValue("")
	m.inputs[1].SetValue("0")
	if err := m.apply(); err == nil {
		t.Error("zero shots should fail")
	}
}

type versionCaller struct {
	method string
}

func (c *versionCaller) Call(_ context.Context, method string, _, result any) error {
	c.method = method
	*(result.(*map[string]any)) = map[string]any{"quilc": "1.26.0"}
	return nil
}

func TestPrintVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type string `json:"type"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Type != "version" {
			t.Errorf("request type = %q", req.Type)
		}
		w.Write([]byte("1.17.1 [cf3f91f]\n"))
	}))
	defer srv.Close()

	cfg := configuration.Default()
	cfg.QVMURL = srv.URL
	cfg.QuilcURL = "tcp://quilc:5555"
	caller := &versionCaller{}
	var dialed string
	dial := func(endpoint string, _ *rpcq.Credentials) (rpcq.Caller, error) {
		dialed = endpoint
		return caller, nil
	}

	var out bytes.Buffer
	if err := printVersions(context.Background(), &out, cfg, dial); err != nil {
		t.Fatalf("printVersions: %v", err)
	}
	want := "qvm   1.17.1 [cf3f91f]\nquilc 1.26.0\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
	if dialed != "tcp://quilc:5555" || caller.method != "get_version_info" {
		t.Errorf("dialed %q, method %q", dialed, caller.method)
	}
}

func TestPrintVersionsQVMDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := configuration.Default()
	cfg.QVMURL = url
	err := printVersions(context.Background(), io.Discard, cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "qvm at "+url) {
		t.Fatalf("err = %v", err)
	}
}
