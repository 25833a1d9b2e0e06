package storage

import (
	"fmt"

	"github.com/san-kum/mechsim/internal/bodies"
)

// Table is a run laid out as one row per tick.
type Table struct {
	Columns []string
	Times   []float64
	Rows    [][]float64
}

// Column returns the named column, or an error if the table has none.
func (t *Table) Column(name string) ([]float64, error) {
	for j, c := range t.Columns {
		if c != name {
			continue
		}
		out := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			out[i] = row[j]
		}
		return out, nil
	}
	return nil, fmt.Errorf("no column %q (have %v)", name, t.Columns)
}

func bodyColumns(name string) []string {
	return []string{name + ".x", name + ".y", name + ".vx", name + ".vy"}
}

// PendulumTable lays out the bob trajectory plus angle and omega.
func PendulumTable(p *bodies.Pendulum) *Table {
	h := p.History()
	table := &Table{
		Columns: append(bodyColumns("bob"), "angle", "omega"),
		Times:   append([]float64(nil), h.Time...),
		Rows:    make([][]float64, h.Len()),
	}
	for i := range table.Rows {
		pos, vel := h.Position[i], h.Velocity[i]
		table.Rows[i] = []float64{pos.X, pos.Y, vel.X, vel.Y, h.Angle[i], h.AngularVelocity[i]}
	}
	return table
}

// SystemTable lays out every planet's trajectory, in joint-state order.
func SystemTable(s *bodies.System) *Table {
	table := &Table{
		Times: append([]float64(nil), s.Times()...),
		Rows:  make([][]float64, len(s.History())),
	}
	for _, name := range s.Names() {
		table.Columns = append(table.Columns, bodyColumns(name)...)
	}
	for i, joint := range s.History() {
		table.Rows[i] = joint.Flatten()
	}
	return table
}
