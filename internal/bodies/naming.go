package bodies

import "strconv"

// Namer hands out sequential labels: Planet1, Planet2, ...
type Namer struct {
	prefix string
	next   int
}

func NewNamer(prefix string) *Namer {
	return &Namer{prefix: prefix, next: 1}
}

func (n *Namer) Next() string {
	name := n.prefix + strconv.Itoa(n.next)
	n.next++
	return name
}
