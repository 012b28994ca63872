package actions

// Vars is the per-run named-value scratch space threaded between steps. It is
// created empty at run start, mutated only by saveAs-bearing steps, and
// discarded when the run ends. Re-use of a name overwrites; no versioning.
type Vars struct {
	values map[string]interface{}
}

// NewVars creates an empty variable store.
func NewVars() *Vars {
	return &Vars{values: make(map[string]interface{})}
}

// Get returns the value stored under name.
func (v *Vars) Get(name string) (interface{}, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Set stores value under name, overwriting any previous entry.
func (v *Vars) Set(name string, value interface{}) {
	v.values[name] = value
}

// Snapshot returns a copy of the store's current contents.
func (v *Vars) Snapshot() map[string]interface{} {
	out := make(map[string]interface{}, len(v.values))
	for k, val := range v.values {
		out[k] = val
	}
	return out
}
