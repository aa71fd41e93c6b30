package topology

// Snapshot is a point-in-time copy of the switches and links in a
// graph, suitable for persisting and replaying.
type Snapshot struct {
	Switches []Switch
	Links    []Link
}

func (g *Graph) Snapshot() Snapshot {
	return Snapshot{Switches: g.Switches(), Links: g.Links()}
}

func (s Snapshot) Empty() bool {
	return len(s.Switches) == 0 && len(s.Links) == 0
}
