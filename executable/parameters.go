package executable

// Parameters holds the values written into classical memory before a run,
// keyed by region name.
type Parameters map[string][]float64

// Set stores value at name[index], growing the region with zeros as needed.
// A negative index stores nothing and reports false.
func (p Parameters) Set(name string, index int, value float64) bool {
	if index < 0 {
		return false
	}
	vs := p[name]
	if index >= len(vs) {
		grown := make([]float64, index+1)
		copy(grown, vs)
		vs = grown
	}
	vs[index] = value
	p[name] = vs
	return true
}

// Get returns the value at name[index].
func (p Parameters) Get(name string, index int) (float64, bool) {
	vs, ok := p[name]
	if !ok || index < 0 || index >= len(vs) {
		return 0, false
	}
	return vs[index], true
}

// Clone returns an independent copy.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// DefaultReadout is read when no region has been requested explicitly.
const DefaultReadout = "ro"

// Readouts is the ordered set of regions returned after a run.
type Readouts struct {
	names    []string
	explicit bool
}

// Add requests name. The first call replaces the default region. Add reports
// whether the set changed.
func (r *Readouts) Add(name string) bool {
	if !r.explicit {
		r.explicit = true
		r.names = []string{name}
		return true
	}
	for _, n := range r.names {
		if n == name {
			return false
		}
	}
	r.names = append(r.names, name)
	return true
}

// Names returns the requested regions in insertion order.
func (r *Readouts) Names() []string {
	if !r.explicit {
		return []string{DefaultReadout}
	}
	return append([]string(nil), r.names...)
}
