package qpu

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/qcs-runtime/errors"
)

type bufferRef struct {
	buffer string
	index  int
}

// BufferNames returns, in index order, the buffers that carry region's
// values according to a translation's read-out sources. Each source is a
// (memory reference, buffer name) pair. A region with no sources yields nil;
// indices that do not run contiguously from 0 are a CompileError.
func BufferNames(roSources [][]string, region string) ([]string, error) {
	var refs []bufferRef
	for _, src := range roSources {
		if len(src) < 2 {
			continue
		}
		ref, buffer := src[len(src)-2], src[len(src)-1]
		if ref == region {
			refs = append(refs, bufferRef{buffer: buffer})
			continue
		}
		open := strings.IndexByte(ref, '[')
		closing := strings.IndexByte(ref, ']')
		if open < 0 || closing < open || ref[:open] != region {
			continue
		}
		idx, err := strconv.Atoi(ref[open+1 : closing])
		if err != nil {
			continue
		}
		refs = append(refs, bufferRef{buffer: buffer, index: idx})
	}
	if len(refs) == 0 {
		return nil, nil
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].index < refs[j].index })
	if refs[0].index != 0 {
		return nil, errors.Compile(errors.KindInvalidInput,
			fmt.Sprintf("the first buffer for %s must be at index 0, got %d", region, refs[0].index), nil)
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		if r.index != i {
			return nil, errors.Compile(errors.KindInvalidInput,
				fmt.Sprintf("read-out requires contiguous memory, but a gap was detected between %s[%d] and %s[%d]",
					region, refs[i-1].index, region, r.index), nil)
		}
		names[i] = r.buffer
	}
	return names, nil
}

// OrganizeROSources maps each readout region to its buffers. Regions without
// sources are omitted.
func OrganizeROSources(roSources [][]string, readouts []string) (map[string][]string, error) {
	out := make(map[string][]string, len(readouts))
	for _, region := range readouts {
		names, err := BufferNames(roSources, region)
		if err != nil {
			return nil, err
		}
		if names != nil {
			out[region] = names
		}
	}
	return out, nil
}
