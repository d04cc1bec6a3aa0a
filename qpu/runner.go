package qpu

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/qcs-runtime/api"
	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/rpcq"
)

type qpuRequest struct {
	PatchValues map[string][]float64 `msgpack:"patch_values"`
	Type        string               `msgpack:"_type"`
	ID          string               `msgpack:"id"`
	Program     string               `msgpack:"program"`
}

type qpuParams struct {
	Request  qpuRequest `msgpack:"request"`
	Priority int        `msgpack:"priority"`
}

type resultsRequest struct {
	JobID string `msgpack:"job_id"`
	Wait  bool   `msgpack:"wait"`
}

// ExecutionResults is the raw outcome of one job.
type ExecutionResults struct {
	Buffers  map[string]Buffer `msgpack:"buffers"`
	Duration *uint64           `msgpack:"execution_duration_microseconds"`
}

// Elapsed returns the reported execution time, zero when absent.
func (r *ExecutionResults) Elapsed() time.Duration {
	if r.Duration == nil {
		return 0
	}
	return time.Duration(*r.Duration) * time.Microsecond
}

// connect dials the engaged endpoint. The returned func closes the
// connection.
func connect(dial rpcq.Dialer, eng *api.Engagement) (rpcq.Caller, func(), error) {
	var creds *rpcq.Credentials
	if eng.Credentials.ServerPublic != "" {
		creds = &rpcq.Credentials{
			ClientPublic: eng.Credentials.ClientPublic,
			ClientSecret: eng.Credentials.ClientSecret,
			ServerPublic: eng.Credentials.ServerPublic,
		}
	} else {
		Logger().Warn("connecting to QPU without credentials", zap.String("address", eng.Address))
	}

	caller, err := dial(eng.Address, creds)
	if err != nil {
		return nil, nil, errors.Unreachable(errors.PhaseSubmit, eng.Address, err)
	}
	closer := func() {}
	if c, ok := caller.(io.Closer); ok {
		closer = func() { c.Close() }
	}
	return caller, closer, nil
}

// submit sends an encrypted program with its patch values and returns the
// job id assigned by the QPU.
func submit(ctx context.Context, caller rpcq.Caller, address, program string, patch map[string][]float64) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(errors.ClassTransport, errors.PhaseSubmit, errors.KindProtocol, err, "generate request id")
	}
	params := qpuParams{
		Request: qpuRequest{
			Type:        "QPURequest",
			ID:          id.String(),
			Program:     program,
			PatchValues: patch,
		},
		Priority: 1,
	}

	var jobID string
	if err := caller.Call(ctx, "execute_qpu_request", params, &jobID); err != nil {
		return "", callError(address, err)
	}
	Logger().Debug("received job id", zap.String("job", jobID))
	return jobID, nil
}

// retrieve waits for the results of jobID.
func retrieve(ctx context.Context, caller rpcq.Caller, address, jobID string) (*ExecutionResults, error) {
	var res ExecutionResults
	if err := caller.Call(ctx, "get_execution_results", resultsRequest{JobID: jobID, Wait: true}, &res); err != nil {
		return nil, callError(address, err)
	}
	return &res, nil
}

func callError(address string, err error) error {
	var se *rpcq.ServerError
	if stderrors.As(err, &se) {
		return errors.Device("QPU returned an error: "+se.Message, err)
	}
	return errors.Unreachable(errors.PhaseSubmit, address, err)
}
