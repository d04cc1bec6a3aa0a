package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/qcs-runtime/configuration"
	"github.com/wippyai/qcs-runtime/executable"
	"github.com/wippyai/qcs-runtime/manifest"
	"github.com/wippyai/qcs-runtime/qpu"
	"github.com/wippyai/qcs-runtime/quilc"
	"github.com/wippyai/qcs-runtime/qvm"
	"github.com/wippyai/qcs-runtime/result"
	"github.com/wippyai/qcs-runtime/rpcq"
)

// paramFlag collects repeated -param name=v1,v2 flags.
type paramFlag map[string][]float64

func (p paramFlag) String() string {
	var parts []string
	for name, vs := range p {
		strs := make([]string, len(vs))
		for i, v := range vs {
			strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		parts = append(parts, name+"="+strings.Join(strs, ","))
	}
	return strings.Join(parts, " ")
}

func (p paramFlag) Set(s string) error {
	name, values, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value[,value...], got %q", s)
	}
	var vs []float64
	for _, field := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		vs = append(vs, v)
	}
	p[name] = vs
	return nil
}

func main() {
	params := make(paramFlag)
	var (
		jobFile     = flag.String("job", "", "Path to an HCL job file")
		quilFile    = flag.String("quil", "", "Path to a Quil program")
		shots       = flag.Uint("shots", 1, "Number of shots")
		readouts    = flag.String("read", "", "Regions to read (comma-separated, default ro)")
		qpuID       = flag.String("qpu", "", "Run on this quantum processor instead of the QVM")
		qvmURL      = flag.String("qvm", "", "QVM endpoint (default from settings)")
		noQuilc     = flag.Bool("no-quilc", false, "Skip native compilation for QPU runs")
		list        = flag.Bool("list-processors", false, "List available quantum processors and exit")
		version     = flag.Bool("version", false, "Print the QVM and quilc versions and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Var(params, "param", "Parameter values as name=v1,v2 (repeatable)")
	flag.Parse()

	if *verbose {
		setLogger()
	}

	if *list {
		if err := listProcessors(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *version {
		if err := versions(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *jobFile == "" && *quilFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: qcs -quil <file.quil> [-shots n] [-param name=v,...] [-read ro,...] [-qpu id | -qvm url]")
		fmt.Fprintln(os.Stderr, "       qcs -job <job.hcl>")
		fmt.Fprintln(os.Stderr, "       qcs -list-processors")
		fmt.Fprintln(os.Stderr, "       qcs -version")
		fmt.Fprintln(os.Stderr, "       qcs -quil <file.quil> -i  (interactive mode)")
		os.Exit(1)
	}

	job, err := loadJob(*jobFile, *quilFile, jobOptions{
		shots:    *shots,
		readouts: *readouts,
		qpu:      *qpuID,
		qvm:      *qvmURL,
		noQuilc:  *noQuilc,
		params:   params,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(job); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Stdout, job); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setLogger() {
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	executable.SetLogger(l)
	qvm.SetLogger(l)
	qpu.SetLogger(l)
	rpcq.SetLogger(l)
}

type jobOptions struct {
	params   paramFlag
	readouts string
	qpu      string
	qvm      string
	shots    uint
	noQuilc  bool
}

// loadJob reads a job file, or builds a job from a program file and flags.
// Flags never override a job file.
func loadJob(jobFile, quilFile string, opts jobOptions) (*manifest.Job, error) {
	if jobFile != "" {
		return manifest.Load(jobFile)
	}

	src, err := os.ReadFile(quilFile)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	if opts.shots < 1 || opts.shots > 65535 {
		return nil, fmt.Errorf("shots must be between 1 and 65535, got %d", opts.shots)
	}
	job := &manifest.Job{
		Program:    string(src),
		Parameters: opts.params,
		Shots:      uint16(opts.shots),
		Compile:    !opts.noQuilc,
		Target:     executable.Simulator(opts.qvm),
	}
	if opts.qpu != "" {
		job.Target = executable.Device(opts.qpu)
	}
	if opts.readouts != "" {
		for _, name := range strings.Split(opts.readouts, ",") {
			if name = strings.TrimSpace(name); name != "" {
				job.Readouts = append(job.Readouts, name)
			}
		}
	}
	return job, nil
}

func run(w io.Writer, job *manifest.Job) error {
	exe, err := job.Executable()
	if err != nil {
		return err
	}

	res := exe.Execute(context.Background(), job.Target)
	defer res.Drop()
	if res.Kind == result.KindError {
		return res.Err
	}

	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	fmt.Fprint(w, render(res.Handle, exe.Readouts(), styled))
	return nil
}

func versions(w io.Writer) error {
	cfg, err := configuration.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	return printVersions(ctx, w, cfg, rpcq.DialCaller)
}

// versionTimeout bounds -version, which may be run with no servers up.
const versionTimeout = 10 * time.Second

// printVersions asks the configured QVM and quilc for their versions.
func printVersions(ctx context.Context, w io.Writer, cfg *configuration.Configuration, dial rpcq.Dialer) error {
	v, err := qvm.NewClient(cfg.QVMURL, cfg.HTTPClient).Version(ctx)
	if err != nil {
		return fmt.Errorf("qvm at %s: %w", cfg.QVMURL, err)
	}
	fmt.Fprintf(w, "qvm   %s\n", v)

	c, err := quilc.Dial(cfg.QuilcURL, dial)
	if err != nil {
		return err
	}
	if v, err = c.Version(ctx); err != nil {
		return fmt.Errorf("quilc at %s: %w", cfg.QuilcURL, err)
	}
	fmt.Fprintf(w, "quilc %s\n", v)
	return nil
}

func listProcessors(w io.Writer) error {
	cfg, err := configuration.Load()
	if err != nil {
		return err
	}
	ids, err := qpu.ListQuantumProcessors(context.Background(), cfg)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}
