package manifest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/executable"
)

// hclJob is the top-level structure of a job file.
type hclJob struct {
	Program     *string    `hcl:"program,optional"`
	ProgramFile *string    `hcl:"program_file,optional"`
	Shots       *int       `hcl:"shots,optional"`
	Readouts    []string   `hcl:"readouts,optional"`
	Parameters  *cty.Value `hcl:"parameters,optional"`
	Target      *hclTarget `hcl:"target,block"`
}

// hclTarget is a `target "qvm"` or `target "qpu"` block.
type hclTarget struct {
	Kind      string  `hcl:"kind,label"`
	Endpoint  *string `hcl:"endpoint,optional"`
	Processor *string `hcl:"processor,optional"`
	Compile   *bool   `hcl:"compile,optional"`
}

// Job is a decoded job file: a program and how to run it.
type Job struct {
	Parameters map[string][]float64
	Target     executable.Target
	Program    string
	Readouts   []string
	Shots      uint16
	Compile    bool
}

// evalContext exposes pi to parameter expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
		},
	}
}

// Load reads and decodes the job file at path. A relative program_file is
// resolved against the job file's directory.
func Load(path string) (*Job, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Configuration(errors.KindNotFound, "read job file "+path, err)
	}
	return Parse(src, path)
}

// Parse decodes a job file held in memory. filename is used in diagnostics
// and to resolve program_file.
func Parse(src []byte, filename string) (*Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Configuration(errors.KindSyntax, "parse job file "+filename, diags)
	}

	var raw hclJob
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &raw); diags.HasErrors() {
		return nil, errors.Configuration(errors.KindInvalidInput, "decode job file "+filename, diags)
	}
	return raw.job(filepath.Dir(filename))
}

func (r *hclJob) job(dir string) (*Job, error) {
	job := &Job{Shots: 1, Compile: true, Readouts: r.Readouts}

	switch {
	case r.Program != nil && r.ProgramFile != nil:
		return nil, invalid("set only one of program and program_file")
	case r.Program != nil:
		job.Program = *r.Program
	case r.ProgramFile != nil:
		path := *r.ProgramFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Configuration(errors.KindNotFound, "read program "+path, err)
		}
		job.Program = string(src)
	default:
		return nil, invalid("one of program or program_file is required")
	}

	if r.Shots != nil {
		if *r.Shots < 1 || *r.Shots > math.MaxUint16 {
			return nil, invalid(fmt.Sprintf("shots must be between 1 and %d, got %d", math.MaxUint16, *r.Shots))
		}
		job.Shots = uint16(*r.Shots)
	}

	if r.Parameters != nil && !r.Parameters.IsNull() {
		params, err := decodeParameters(*r.Parameters)
		if err != nil {
			return nil, err
		}
		job.Parameters = params
	}

	target, compile, err := r.Target.decode()
	if err != nil {
		return nil, err
	}
	job.Target = target
	job.Compile = compile
	return job, nil
}

// decodeParameters accepts an object whose attributes are numbers or lists
// of numbers.
func decodeParameters(v cty.Value) (map[string][]float64, error) {
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, invalid("parameters must be an object, got " + v.Type().FriendlyName())
	}
	out := make(map[string][]float64)
	for it := v.ElementIterator(); it.Next(); {
		k, elem := it.Element()
		name := k.AsString()
		if elem.Type() == cty.Number {
			elem = cty.TupleVal([]cty.Value{elem})
		}
		list, err := convert.Convert(elem, cty.List(cty.Number))
		if err != nil {
			return nil, invalid(fmt.Sprintf("parameter %s: %v", name, err))
		}
		var values []float64
		if err := gocty.FromCtyValue(list, &values); err != nil {
			return nil, invalid(fmt.Sprintf("parameter %s: %v", name, err))
		}
		out[name] = values
	}
	return out, nil
}

func (t *hclTarget) decode() (executable.Target, bool, error) {
	if t == nil {
		return executable.Simulator(""), true, nil
	}
	compile := true
	if t.Compile != nil {
		compile = *t.Compile
	}
	switch t.Kind {
	case "qvm":
		if t.Processor != nil {
			return executable.Target{}, false, invalid("processor is only valid for qpu targets")
		}
		endpoint := ""
		if t.Endpoint != nil {
			endpoint = *t.Endpoint
		}
		return executable.Simulator(endpoint), compile, nil
	case "qpu":
		if t.Processor == nil || *t.Processor == "" {
			return executable.Target{}, false, invalid("qpu targets require processor")
		}
		return executable.Device(*t.Processor), compile, nil
	}
	return executable.Target{}, false, invalid(fmt.Sprintf("unknown target %q, expected qvm or qpu", t.Kind))
}

func invalid(detail string) error {
	return errors.Configuration(errors.KindInvalidInput, detail, nil)
}

// Executable builds an Executable configured as the job describes.
func (j *Job) Executable() (*executable.Executable, error) {
	exe, err := executable.FromQuil(j.Program)
	if err != nil {
		return nil, err
	}
	for name, values := range j.Parameters {
		for i, v := range values {
			exe.SetParameter(name, i, v)
		}
	}
	for _, name := range j.Readouts {
		exe.ReadFrom(name)
	}
	exe.SetShots(j.Shots)
	exe.CompileWithQuilc(j.Compile)
	return exe, nil
}
