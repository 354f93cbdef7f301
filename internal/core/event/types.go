package event

// ObstacleAdded fires after a footprint is registered with the grid.
type ObstacleAdded struct {
	SessionID uint64 // originating session, 0 for server-side sources
	Kind      int    // nav.FootprintKind value
	CenterX   float64
	CenterZ   float64
}

// ObstacleRemoved fires after a footprint is unregistered.
type ObstacleRemoved struct {
	SessionID uint64
	Kind      int
	CenterX   float64
	CenterZ   float64
}

// LayoutLoaded fires after a stored layout replaces obstacles at runtime.
type LayoutLoaded struct {
	Name      string
	Obstacles int
}
