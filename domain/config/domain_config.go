package config

import "time"

// HydrationMode controls when a media item's display URL is resolved
type HydrationMode int

const (
	// HydrateEager resolves the URL as soon as the item is seen
	HydrateEager HydrationMode = iota
	// HydrateDeferred resolves the URL on first explicit request
	HydrateDeferred
)

// DomainConfig holds all configurable interaction rules and constraints
type DomainConfig struct {
	// History constraints
	HistoryCap int

	// Gesture tuning
	DragThreshold     float64
	RotationPerPixel  float64
	RotationSnapStep  float64
	ScalePerPixel     float64
	MinScaleFactor    float64
	SocketSnapRadius  float64
	SocketGrabRadius  float64
	EraserRadius      float64
	DefaultBrushSize  float64
	DefaultBrushColor string

	// Group constraints
	GroupPadding     float64
	MinGroupChildren int

	// Media hydration
	HydrationByKind    map[string]HydrationMode
	ResolverBatchSize  int
	ResolverBatchDelay time.Duration
	ResolverMaxRetries int
	ResolverBaseDelay  time.Duration

	// Sync tuning
	PushDebounce time.Duration

	// Singleton item kinds keyed by their registry name. At most one
	// item per key may exist on a board.
	SingletonKeys []string

	// Feature flags
	EnableRealTimeSync bool
	EnableBookmarks    bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// History constraints
		HistoryCap: 50,

		// Gesture tuning
		DragThreshold:     3,
		RotationPerPixel:  -0.5,
		RotationSnapStep:  25,
		ScalePerPixel:     1.0 / 200.0,
		MinScaleFactor:    0.1,
		SocketSnapRadius:  100,
		SocketGrabRadius:  16,
		EraserRadius:      20,
		DefaultBrushSize:  4,
		DefaultBrushColor: "#1a1a1a",

		// Group constraints
		GroupPadding:     10,
		MinGroupChildren: 2,

		// Media hydration
		HydrationByKind: map[string]HydrationMode{
			"image": HydrateEager,
			"video": HydrateDeferred,
		},
		ResolverBatchSize:  3,
		ResolverBatchDelay: 50 * time.Millisecond,
		ResolverMaxRetries: 3,
		ResolverBaseDelay:  500 * time.Millisecond,

		// Sync tuning
		PushDebounce: 100 * time.Millisecond,

		SingletonKeys: []string{"prompt-bar", "color-wheel"},

		// Feature flags
		EnableRealTimeSync: true,
		EnableBookmarks:    true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter history in production to bound memory per session
	config.HistoryCap = 50
	config.PushDebounce = 150 * time.Millisecond

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.HistoryCap = 200
	config.ResolverBatchDelay = 0

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// HydrationFor returns the hydration mode for an item kind. Unknown
// kinds hydrate eagerly.
func (c *DomainConfig) HydrationFor(kind string) HydrationMode {
	if mode, ok := c.HydrationByKind[kind]; ok {
		return mode
	}
	return HydrateEager
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.HistoryCap < 1 {
		c.HistoryCap = 1
	}
	if c.ResolverBatchSize < 1 {
		c.ResolverBatchSize = 1
	}
	if c.MinScaleFactor <= 0 {
		c.MinScaleFactor = 0.1
	}
	return nil
}
