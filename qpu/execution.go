package qpu

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/qcs-runtime/api"
	"github.com/wippyai/qcs-runtime/configuration"
	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/quil"
	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/quilc"
	"github.com/wippyai/qcs-runtime/result"
	"github.com/wippyai/qcs-runtime/rpcq"
)

// API is the subset of the QCS REST API used to run on hardware.
type API interface {
	Engager
	InstructionSetArchitecture(ctx context.Context, processorID string) (*api.InstructionSetArchitecture, error)
	Translate(ctx context.Context, processorID, quil string, shots int) (*api.Translation, error)
}

// Compiler turns a program into native Quil for a processor.
type Compiler interface {
	Compile(ctx context.Context, quil string, isa *api.InstructionSetArchitecture) (string, error)
}

// Services are the collaborators an Execution talks to.
type Services struct {
	API         API
	Compiler    Compiler
	Dial        rpcq.Dialer
	Engagements *EngagementCache
}

// NewServices wires the QCS API, quilc and RPCQ endpoints from cfg. quilc is
// dialed on first use.
func NewServices(cfg *configuration.Configuration) *Services {
	dial := rpcq.TimeoutDialer(cfg.RPCTimeout)
	return &Services{
		API:         api.NewClient(cfg).WithLogger(Logger()),
		Compiler:    &lazyCompiler{endpoint: cfg.QuilcURL, dial: dial},
		Dial:        dial,
		Engagements: NewEngagementCache(),
	}
}

type lazyCompiler struct {
	client   *quilc.Client
	dial     rpcq.Dialer
	endpoint string
	mu       sync.Mutex
}

func (l *lazyCompiler) Compile(ctx context.Context, text string, isa *api.InstructionSetArchitecture) (string, error) {
	l.mu.Lock()
	if l.client == nil {
		c, err := quilc.Dial(l.endpoint, l.dial)
		if err != nil {
			l.mu.Unlock()
			return "", err
		}
		l.client = c
	}
	c := l.client
	l.mu.Unlock()
	return c.Compile(ctx, text, isa)
}

// Outcome is the decoded result of one run.
type Outcome struct {
	Raw      map[string]result.Raw
	Duration time.Duration
}

// Execution is a program compiled for one processor. Translations are
// cached per shot count and the read-out mapping per readout list, so
// repeated runs with new parameter values only patch memory.
type Execution struct {
	program      *Rewritten
	translations map[int]*api.Translation
	bufferNames  map[string][]string
	bufferSource *api.Translation
	processorID  string
	readoutKey   string
	mu           sync.Mutex
}

// NewExecution fetches the processor's ISA, compiles prog to native Quil
// unless compile is false, and rewrites its arithmetic for patching.
func NewExecution(ctx context.Context, svc *Services, prog *ast.Program, processorID string, compile bool) (*Execution, error) {
	log := Logger().With(zap.String("processor", processorID))

	isa, err := svc.API.InstructionSetArchitecture(ctx, processorID)
	if err != nil {
		return nil, err
	}

	native := prog
	if compile {
		log.Debug("compiling to native quil")
		text, err := svc.Compiler.Compile(ctx, prog.String(), isa)
		if err != nil {
			return nil, err
		}
		if native, err = quil.Parse(text); err != nil {
			return nil, errors.Compile(errors.KindInvalidInput, "parse native quil returned by quilc", err)
		}
	} else {
		log.Debug("skipping native compilation")
	}

	rw, err := RewriteArithmetic(native)
	if err != nil {
		return nil, err
	}
	log.Debug("rewrote arithmetic", zap.Int("substitutions", len(rw.Substitutions)))

	return &Execution{
		program:      rw,
		processorID:  processorID,
		translations: make(map[int]*api.Translation),
	}, nil
}

// Program returns the rewritten native program.
func (e *Execution) Program() *Rewritten {
	return e.program
}

// ResetReadouts drops the cached read-out mapping.
func (e *Execution) ResetReadouts() {
	e.mu.Lock()
	e.bufferNames = nil
	e.bufferSource = nil
	e.readoutKey = ""
	e.mu.Unlock()
}

// Job is a program submitted to a QPU whose results have not been
// retrieved yet.
type Job struct {
	names       map[string][]string
	ID          string
	ProcessorID string
	readouts    []string
	shots       int
}

// Readouts returns the regions requested when the job was submitted.
func (j *Job) Readouts() []string {
	return append([]string(nil), j.readouts...)
}

// Shots returns the shot count the job was submitted with.
func (j *Job) Shots() int {
	return j.shots
}

// Run executes the program for shots with the given parameter values and
// returns raw read-out for each requested region that the program measures.
func (e *Execution) Run(ctx context.Context, svc *Services, params map[string][]float64, readouts []string, shots int) (*Outcome, error) {
	job, tr, patch, err := e.prepare(ctx, svc, params, readouts, shots)
	if err != nil {
		return nil, err
	}
	var res *ExecutionResults
	err = engaged(ctx, svc, e.processorID, func(caller rpcq.Caller, address string) error {
		id, err := submit(ctx, caller, address, tr.Program, patch)
		if err != nil {
			return err
		}
		job.ID = id
		res, err = retrieve(ctx, caller, address, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job.outcome(res)
}

// Submit sends the program to the QPU and returns without waiting for it to
// run. Pass the Job to Retrieve to collect the results.
func (e *Execution) Submit(ctx context.Context, svc *Services, params map[string][]float64, readouts []string, shots int) (*Job, error) {
	job, tr, patch, err := e.prepare(ctx, svc, params, readouts, shots)
	if err != nil {
		return nil, err
	}
	err = engaged(ctx, svc, e.processorID, func(caller rpcq.Caller, address string) error {
		id, err := submit(ctx, caller, address, tr.Program, patch)
		job.ID = id
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Retrieve waits for a submitted job to finish and returns its read-out.
func Retrieve(ctx context.Context, svc *Services, job *Job) (*Outcome, error) {
	var res *ExecutionResults
	err := engaged(ctx, svc, job.ProcessorID, func(caller rpcq.Caller, address string) error {
		var err error
		res, err = retrieve(ctx, caller, address, job.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job.outcome(res)
}

func (e *Execution) prepare(ctx context.Context, svc *Services, params map[string][]float64, readouts []string, shots int) (*Job, *api.Translation, map[string][]float64, error) {
	if shots < 1 {
		return nil, nil, nil, errors.Compile(errors.KindInvalidInput, "shots must be positive", nil)
	}
	tr, err := e.translation(ctx, svc, shots)
	if err != nil {
		return nil, nil, nil, err
	}
	names, err := e.readouts(tr, readouts)
	if err != nil {
		return nil, nil, nil, err
	}
	patch, err := e.program.PatchValues(params)
	if err != nil {
		return nil, nil, nil, err
	}
	job := &Job{
		ProcessorID: e.processorID,
		names:       names,
		readouts:    append([]string(nil), readouts...),
		shots:       shots,
	}
	return job, tr, patch, nil
}

// engaged runs fn against a connection to the processor's engaged endpoint.
// A transport failure drops the cached engagement.
func engaged(ctx context.Context, svc *Services, processorID string, fn func(rpcq.Caller, string) error) error {
	eng, err := svc.Engagements.Get(ctx, svc.API, processorID)
	if err != nil {
		return err
	}
	caller, closeFn, err := connect(svc.Dial, eng)
	if err == nil {
		defer closeFn()
		err = fn(caller, eng.Address)
	}
	if err != nil && errors.ClassOf(err) == errors.ClassTransport {
		svc.Engagements.Forget(processorID)
	}
	return err
}

func (j *Job) outcome(res *ExecutionResults) (*Outcome, error) {
	raw, err := Columns(res.Buffers, j.names, j.shots)
	if err != nil {
		return nil, err
	}
	return &Outcome{Raw: raw, Duration: res.Elapsed()}, nil
}

func (e *Execution) translation(ctx context.Context, svc *Services, shots int) (*api.Translation, error) {
	e.mu.Lock()
	tr, ok := e.translations[shots]
	e.mu.Unlock()
	if ok {
		return tr, nil
	}

	tr, err := svc.API.Translate(ctx, e.processorID, e.program.Program.String(), shots)
	if err != nil {
		switch api.StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return nil, errors.Compile(errors.KindInvalidInput, "translate program for "+e.processorID, err)
		}
		return nil, err
	}
	Logger().Debug("translated program",
		zap.String("processor", e.processorID),
		zap.Int("shots", shots),
		zap.Int("ro_sources", len(tr.ROSources)))

	e.mu.Lock()
	e.translations[shots] = tr
	e.mu.Unlock()
	return tr, nil
}

func (e *Execution) readouts(tr *api.Translation, readouts []string) (map[string][]string, error) {
	key := strings.Join(readouts, "\x00")
	e.mu.Lock()
	if e.bufferNames != nil && e.bufferSource == tr && e.readoutKey == key {
		names := e.bufferNames
		e.mu.Unlock()
		return names, nil
	}
	e.mu.Unlock()

	names, err := OrganizeROSources(tr.ROSources, readouts)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.bufferNames = names
	e.bufferSource = tr
	e.readoutKey = key
	e.mu.Unlock()
	return names, nil
}

// ListQuantumProcessors returns the ids of the processors visible to cfg.
func ListQuantumProcessors(ctx context.Context, cfg *configuration.Configuration) ([]string, error) {
	qpus, err := api.NewClient(cfg).WithLogger(Logger()).ListQuantumProcessors(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(qpus))
	for i, q := range qpus {
		ids[i] = q.ID
	}
	return ids, nil
}
