package executable

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/wippyai/qcs-runtime/configuration"
	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/qpu"
	"github.com/wippyai/qcs-runtime/quil"
	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/qvm"
	"github.com/wippyai/qcs-runtime/result"
)

// Executable is a parsed program together with everything needed to run it:
// parameter values, the regions to read, the shot count and the artifacts
// cached from earlier dispatches.
//
// An Executable is not safe for concurrent use. Distinct Executables may be
// dispatched from different goroutines.
type Executable struct {
	program  *ast.Program
	params   Parameters
	rejected *multierror.Error
	readouts Readouts
	config   *configuration.Configuration
	services *qpu.Services
	qvms     map[string]*qvm.Client
	qpus     map[string]*qpu.Execution
	shots    uint16
	compile  bool
}

// FromQuil parses text into an Executable. It performs no network access.
func FromQuil(text string) (*Executable, error) {
	prog, err := quil.Parse(text)
	if err != nil {
		return nil, err
	}
	return New(prog), nil
}

// New returns an Executable for an already parsed program.
func New(prog *ast.Program) *Executable {
	return &Executable{
		program: prog,
		params:  make(Parameters),
		qvms:    make(map[string]*qvm.Client),
		qpus:    make(map[string]*qpu.Execution),
		shots:   1,
		compile: true,
	}
}

// Program returns the parsed program.
func (e *Executable) Program() *ast.Program {
	return e.program
}

// SetParameter sets name[index] for subsequent runs. It never fails: a name
// the program does not declare, or an index outside the declaration, is
// remembered and fails every later dispatch.
func (e *Executable) SetParameter(name string, index int, value float64) {
	region, ok := e.program.Region(name)
	switch {
	case !ok:
		e.rejected = multierror.Append(e.rejected, fmt.Errorf("parameter %s is not a declared memory region", name))
	case index < 0 || uint64(index) >= region.Length:
		e.rejected = multierror.Append(e.rejected, fmt.Errorf("parameter %s[%d] is outside declared length %d", name, index, region.Length))
	default:
		e.params.Set(name, index, value)
	}
}

// Parameters returns a copy of the parameter values.
func (e *Executable) Parameters() Parameters {
	return e.params.Clone()
}

// ReadFrom adds name to the regions returned by a run. The first call
// replaces the default "ro".
func (e *Executable) ReadFrom(name string) {
	if !e.readouts.Add(name) {
		return
	}
	for _, exe := range e.qpus {
		exe.ResetReadouts()
	}
}

// Readouts returns the regions a run returns.
func (e *Executable) Readouts() []string {
	return e.readouts.Names()
}

// SetShots sets how many times the program runs per dispatch. Zero is
// rejected when dispatching.
func (e *Executable) SetShots(n uint16) {
	e.shots = n
}

// Shots returns the shot count.
func (e *Executable) Shots() uint16 {
	return e.shots
}

// CompileWithQuilc controls whether programs sent to a QPU are compiled to
// native Quil first. It defaults to true.
func (e *Executable) CompileWithQuilc(enabled bool) {
	if e.compile == enabled {
		return
	}
	e.compile = enabled
	e.qpus = make(map[string]*qpu.Execution)
}

// SetConfiguration replaces the configuration loaded on first dispatch.
func (e *Executable) SetConfiguration(cfg *configuration.Configuration) {
	e.config = cfg
	e.services = nil
	e.qvms = make(map[string]*qvm.Client)
	e.qpus = make(map[string]*qpu.Execution)
}

func (e *Executable) configuration() (*configuration.Configuration, error) {
	if e.config != nil {
		return e.config, nil
	}
	cfg, err := configuration.Load()
	if err != nil {
		return nil, err
	}
	e.config = cfg
	return cfg, nil
}

// Execute runs the program on target. It always returns a result: failures
// are reported as an Error result.
func (e *Executable) Execute(ctx context.Context, target Target) *result.ExecutionResult {
	log := Logger().With(zap.String("target", target.String()), zap.Uint16("shots", e.shots))
	log.Debug("dispatch configured")

	start := time.Now()
	var res *result.ExecutionResult
	if target.IsDevice() {
		res = e.executeOnQPU(ctx, target.processor, log)
	} else {
		res = e.executeOnQVM(ctx, target.endpoint, log)
	}

	if res.Kind == result.KindError {
		log.Debug("dispatch failed", zap.Error(res.Err), zap.Duration("elapsed", time.Since(start)))
	} else {
		log.Debug("dispatch succeeded", zap.Strings("regions", res.Handle.Regions()), zap.Duration("elapsed", time.Since(start)))
	}
	return res
}

func (e *Executable) validate() error {
	if err := e.rejected.ErrorOrNil(); err != nil {
		return errors.Compile(errors.KindInvalidInput, "invalid parameters for program", err)
	}
	if e.shots == 0 {
		return errors.Compile(errors.KindInvalidInput, "shots must be positive", nil)
	}
	return nil
}

func (e *Executable) executeOnQVM(ctx context.Context, endpoint string, log *zap.Logger) *result.ExecutionResult {
	if err := e.validate(); err != nil {
		return result.Failure(err)
	}
	cfg, err := e.configuration()
	if err != nil {
		return result.Failure(err)
	}
	if endpoint == "" {
		endpoint = cfg.QVMURL
	}

	log.Debug("compiling")
	prog, err := qvm.Prepare(e.program, e.params)
	if err != nil {
		return result.Failure(err)
	}
	readouts := e.readouts.Names()

	client, ok := e.qvms[endpoint]
	if !ok {
		client = qvm.NewClient(endpoint, cfg.HTTPClient)
		e.qvms[endpoint] = client
	}

	log.Debug("submitted", zap.String("endpoint", endpoint))
	raw, err := client.Run(ctx, prog, int(e.shots), qvm.Declared(e.program, readouts))
	if err != nil {
		return result.Failure(err)
	}
	return result.Encode(e.program, readouts, int(e.shots), raw)
}

func (e *Executable) executeOnQPU(ctx context.Context, processorID string, log *zap.Logger) *result.ExecutionResult {
	exe, err := e.qpuExecution(ctx, processorID, log)
	if err != nil {
		return result.Failure(err)
	}

	readouts := e.readouts.Names()
	log.Debug("submitted")
	out, err := exe.Run(ctx, e.services, e.params, readouts, int(e.shots))
	if err != nil {
		return result.Failure(err)
	}
	return e.encode(readouts, int(e.shots), out)
}

// qpuExecution returns the cached compilation for processorID, building it
// on first use.
func (e *Executable) qpuExecution(ctx context.Context, processorID string, log *zap.Logger) (*qpu.Execution, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	cfg, err := e.configuration()
	if err != nil {
		return nil, err
	}
	if e.services == nil {
		e.services = qpu.NewServices(cfg)
	}

	exe, ok := e.qpus[processorID]
	if !ok {
		log.Debug("compiling", zap.Bool("quilc", e.compile))
		exe, err = qpu.NewExecution(ctx, e.services, e.program, processorID, e.compile)
		if err != nil {
			return nil, err
		}
		e.qpus[processorID] = exe
	}
	return exe, nil
}

func (e *Executable) encode(readouts []string, shots int, out *qpu.Outcome) *result.ExecutionResult {
	res := result.Encode(e.program, readouts, shots, out.Raw)
	if res.Handle != nil {
		res.Handle.Duration = out.Duration
	}
	return res
}

// SubmitToQPU compiles and submits the program to processorID without
// waiting for it to run. Collect the results with RetrieveResults.
func (e *Executable) SubmitToQPU(ctx context.Context, processorID string) (*qpu.Job, error) {
	log := Logger().With(zap.String("target", Device(processorID).String()), zap.Uint16("shots", e.shots))
	exe, err := e.qpuExecution(ctx, processorID, log)
	if err != nil {
		return nil, err
	}
	job, err := exe.Submit(ctx, e.services, e.params, e.readouts.Names(), int(e.shots))
	if err != nil {
		return nil, err
	}
	log.Debug("submitted", zap.String("job", job.ID))
	return job, nil
}

// RetrieveResults waits for a job returned by SubmitToQPU and decodes its
// read-out with the regions and shot count it was submitted with.
func (e *Executable) RetrieveResults(ctx context.Context, job *qpu.Job) *result.ExecutionResult {
	if job == nil {
		return result.Failure(errors.Configuration(errors.KindNotFound, "no job to retrieve", nil))
	}
	cfg, err := e.configuration()
	if err != nil {
		return result.Failure(err)
	}
	if e.services == nil {
		e.services = qpu.NewServices(cfg)
	}
	out, err := qpu.Retrieve(ctx, e.services, job)
	if err != nil {
		return result.Failure(err)
	}
	Logger().Debug("retrieved", zap.String("job", job.ID), zap.String("processor", job.ProcessorID))
	return e.encode(job.Readouts(), job.Shots(), out)
}
