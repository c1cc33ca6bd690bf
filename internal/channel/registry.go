package channel

import "fmt"

// Def describes one catalog entry before it is instantiated into a
// live Channel with an empty member set.
type Def struct {
	Name    string
	RomID   string
	Topic   string
	Welcome string
}

// Registry is the static, process-lifetime channel catalog. It is built
// once at startup from a []Def and never grows or shrinks afterward;
// only each Channel's member set is mutable.
type Registry struct {
	byName map[string]*Channel
	names  []string
}

// NewRegistry builds a Registry from defs. Joining a name absent from
// defs is rejected by callers via Get's ok return.
func NewRegistry(defs []Def) *Registry {
	r := &Registry{byName: make(map[string]*Channel, len(defs))}
	for _, d := range defs {
		topic := d.Topic
		if topic == "" {
			topic = d.RomID
		}
		r.byName[d.Name] = newChannel(d.Name, d.RomID, topic, d.Welcome)
		r.names = append(r.names, d.Name)
	}
	return r
}

// Get looks up a channel by name.
func (r *Registry) Get(name string) (*Channel, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// List returns every channel in the static catalog, in definition order.
func (r *Registry) List() []*Channel {
	out := make([]*Channel, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name])
	}
	return out
}

// MustGet looks up a channel by name, panicking if absent, for names the
// caller already knows are in the catalog (e.g. "lobby").
func (r *Registry) MustGet(name string) *Channel {
	c, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("channel: catalog missing required channel %q", name))
	}
	return c
}
