package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/mechsim/internal/dynamo"
)

const Default = "rk4"

var names = []string{"euler", "rk4"}

// Lookup returns a fresh stepper of the named kind for state type V.
func Lookup[V dynamo.Vector[V]](name string) (dynamo.Integrator[V], error) {
	switch name {
	case "", "rk4":
		return NewRK4[V](), nil
	case "euler":
		return NewEuler[V](), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
}

func Names() []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
