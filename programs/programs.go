package programs

import (
	"sort"

	"github.com/delaneyj/tickflow/flow"
)

type Program struct {
	Name        string
	Description string
	Body        flow.Body
}

var registry = map[string]Program{}

func Register(p Program) {
	registry[p.Name] = p
}

func Lookup(name string) (Program, bool) {
	p, ok := registry[name]
	return p, ok
}

// All returns the registered programs sorted by name.
func All() []Program {
	all := make([]Program, 0, len(registry))
	for _, p := range registry {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all
}

func init() {
	Register(Program{
		Name:        "counter",
		Description: "yields a, which changes from 1 to 2 after one second",
		Body:        Counter,
	})
	Register(Program{
		Name:        "clock",
		Description: "yields the number of seconds since start",
		Body:        Clock,
	})
	Register(Program{
		Name:        "cascade",
		Description: "a ticks every 500ms, b follows a*10 through a watcher",
		Body:        Cascade,
	})
	Register(Program{
		Name:        "switch",
		Description: "yields whichever of x and y the flag selects, flipping every second",
		Body:        Switch,
	})
}

func Counter(p *flow.ProcState) error {
	a := p.Local("a", 1)
	if _, err := p.Yield(a); err != nil {
		return err
	}
	_, err := p.After("1s", func(p *flow.ProcState) error {
		_, err := p.Assign("a", 2)
		return err
	})
	return err
}

func Clock(p *flow.ProcState) error {
	if _, err := p.Yield(p.Local("seconds", 0)); err != nil {
		return err
	}
	_, err := p.Every("1s", increment("seconds", 1))
	return err
}

func Cascade(p *flow.ProcState) error {
	p.Local("a", 1)
	b := p.Local("b", 0)

	_, err := p.Watch(func() error {
		a, err := p.Ref("a")
		if err != nil {
			return err
		}
		_, err = p.Assign("b", a*10)
		return err
	})
	if err != nil {
		return err
	}
	if _, err := p.Yield(b); err != nil {
		return err
	}
	_, err = p.Every("500ms", increment("a", 1))
	return err
}

// Switch shows dynamic dependencies: the output watcher only depends on the
// channel the flag currently selects.
func Switch(p *flow.ProcState) error {
	p.Local("flag", 1)
	p.Local("x", 10)
	p.Local("y", 20)
	out := p.Local("out", 0)

	_, err := p.Watch(func() error {
		flag, err := p.Ref("flag")
		if err != nil {
			return err
		}
		name := "x"
		if flag == 0 {
			name = "y"
		}
		v, err := p.Ref(name)
		if err != nil {
			return err
		}
		_, err = p.Assign("out", v)
		return err
	})
	if err != nil {
		return err
	}
	if _, err := p.Yield(out); err != nil {
		return err
	}

	if _, err := p.Every("1s", func(p *flow.ProcState) error {
		flag, err := p.Ref("flag")
		if err != nil {
			return err
		}
		_, err = p.Assign("flag", 1-flag)
		return err
	}); err != nil {
		return err
	}
	if _, err := p.Every("250ms", increment("x", 1)); err != nil {
		return err
	}
	_, err = p.Every("250ms", increment("y", -1))
	return err
}

func increment(name string, by int) flow.Body {
	return func(p *flow.ProcState) error {
		v, err := p.Ref(name)
		if err != nil {
			return err
		}
		_, err = p.Assign(name, v+by)
		return err
	}
}
