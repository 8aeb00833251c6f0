// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Sim        SimConfig        `yaml:"sim"`
	Pheromone  PheromoneConfig  `yaml:"pheromone"`
	Ant        AntConfig        `yaml:"ant"`
	Avoidance  AvoidanceConfig  `yaml:"avoidance"`
	Food       FoodConfig       `yaml:"food"`
	Obstacle   ObstacleConfig   `yaml:"obstacle"`
	Predator   PredatorConfig   `yaml:"predator"`
	Nest       NestConfig       `yaml:"nest"`
	DayNight   DayNightConfig   `yaml:"day_night"`
	Population PopulationConfig `yaml:"population"`
	Placement  PlacementConfig  `yaml:"placement"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Server     ServerConfig     `yaml:"server"`
	Terminal   TerminalConfig   `yaml:"terminal"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TargetFPS  int `yaml:"target_fps"`
	PanelWidth int `yaml:"panel_width"` // Control panel width in pixels
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width    int     `yaml:"width"`     // World width in world units (0 = use screen width)
	Height   int     `yaml:"height"`    // World height in world units (0 = use screen height)
	CellSize float64 `yaml:"cell_size"` // Pheromone grid cell size in world units
}

// SimConfig holds the user-facing options applied on reset.
type SimConfig struct {
	DT                float64 `yaml:"dt"`
	AgentTarget       int     `yaml:"agent_target"`
	FoodSourceTarget  int     `yaml:"food_source_target"`
	PheromoneStrength float64 `yaml:"pheromone_strength"` // 1-10
	EvaporationRate   float64 `yaml:"evaporation_rate"`   // 0-1
	AgentSpeed        float64 `yaml:"agent_speed"`
	DayNightEnabled   bool    `yaml:"day_night_enabled"`
}

// PheromoneConfig holds pheromone field parameters.
type PheromoneConfig struct {
	Max              float64 `yaml:"max"`                // Clamp ceiling for both grids
	DeadZone         float64 `yaml:"dead_zone"`          // Values below this snap to zero after evaporation
	DiffusionRate    float64 `yaml:"diffusion_rate"`     // Fraction of a cell sent to its neighbours per tick
	DiffusionFloor   float64 `yaml:"diffusion_floor"`    // Cells at or below this do not diffuse
	NestIntensity    float64 `yaml:"nest_intensity"`     // Peak home value at the nest cell
	NestRadiusExtra  int     `yaml:"nest_radius_extra"`  // Cells added to the nest radius for emission
	DropMin          float64 `yaml:"drop_min"`           // Deposit at strength 1
	DropMax          float64 `yaml:"drop_max"`           // Deposit at strength 10
	HomeDropFactor   float64 `yaml:"home_drop_factor"`   // Home deposit as a fraction of the food deposit
	NoiseFloor       float64 `yaml:"noise_floor"`        // Sensed values at or below this are ignored
	SenseAngle       float64 `yaml:"sense_angle"`        // Side probe offset in radians
	SenseMultiplier  float64 `yaml:"sense_multiplier"`   // Probe distance = (ant size + 2) * this
	FollowMin        float64 `yaml:"follow_min"`         // Weakest heading blend when following
	FollowMax        float64 `yaml:"follow_max"`         // Strongest heading blend when following
	FoodApproachDrop float64 `yaml:"food_approach_drop"` // Fixed food boost when close to a source
}

// AntConfig holds agent parameters.
type AntConfig struct {
	Size            float64 `yaml:"size"`
	SpeedFactor     float64 `yaml:"speed_factor"` // Base speed = agent_speed * this
	Wander          float64 `yaml:"wander"`
	FocusedWander   float64 `yaml:"focused_wander"`
	WanderChance    float64 `yaml:"wander_chance"`
	MaxEnergy       float64 `yaml:"max_energy"`
	EnergyDecay     float64 `yaml:"energy_decay"` // Per tick
	Lifespan        int     `yaml:"lifespan"`     // Ticks
	PickupEnergy    float64 `yaml:"pickup_energy"`
	DeliveryEnergy  float64 `yaml:"delivery_energy"`
	DetectionRadius float64 `yaml:"detection_radius"`
	ApproachRadius  float64 `yaml:"approach_radius"` // Close enough to lay the food boost
	TurnNear        float64 `yaml:"turn_near"`       // Turn gain at distance 0
	TurnFar         float64 `yaml:"turn_far"`        // Turn gain at the detection radius
	SpeedBoost      float64 `yaml:"speed_boost"`     // Per-tick speed multiplier while approaching
	MaxSpeedFactor  float64 `yaml:"max_speed_factor"`
	HomingGain      float64 `yaml:"homing_gain"`
	SpawnJitter     float64 `yaml:"spawn_jitter"`
}

// AvoidanceConfig holds obstacle avoidance parameters.
type AvoidanceConfig struct {
	HistoryLength  int     `yaml:"history_length"`
	StuckDistance  float64 `yaml:"stuck_distance"`  // Displacement over the history below this counts as stuck
	StuckThreshold int     `yaml:"stuck_threshold"` // Stuck ticks before switching strategy
	SensorRays     int     `yaml:"sensor_rays"`
	SensorSpread   float64 `yaml:"sensor_spread"` // Half-angle of the ray fan in radians
	SensorRange    float64 `yaml:"sensor_range"`
	ClosePenalty   float64 `yaml:"close_penalty"`
	ForwardBonus   float64 `yaml:"forward_bonus"`
	StrategyBonus  float64 `yaml:"strategy_bonus"`
	BaseTurnRate   float64 `yaml:"base_turn_rate"`
	StuckTurnRate  float64 `yaml:"stuck_turn_rate"` // Added turn rate at full stuck counter
	MaxTurnRate    float64 `yaml:"max_turn_rate"`
	PushMargin     float64 `yaml:"push_margin"`
	EscapeJitter   float64 `yaml:"escape_jitter"` // Radians of noise on the escape heading
	NudgeMin       float64 `yaml:"nudge_min"`
	NudgeMax       float64 `yaml:"nudge_max"`
}

// FoodConfig holds food source parameters.
type FoodConfig struct {
	MinSize          float64 `yaml:"min_size"`
	MaxSize          float64 `yaml:"max_size"`
	MinAmount        int     `yaml:"min_amount"`
	MaxAmount        int     `yaml:"max_amount"`
	MinGrowthRate    float64 `yaml:"min_growth_rate"`
	MaxGrowthRate    float64 `yaml:"max_growth_rate"`
	MinNestDistance  float64 `yaml:"min_nest_distance"` // For generated sources
	PlacementRetries int     `yaml:"placement_retries"`
	DisplayMinScale  float64 `yaml:"display_min_scale"`
	FertilityNoise   bool    `yaml:"fertility_noise"`
	FertilityScale   float64 `yaml:"fertility_scale"`
}

// ObstacleConfig holds obstacle parameters.
type ObstacleConfig struct {
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`
}

// PredatorConfig holds predator parameters.
type PredatorConfig struct {
	MinSize  float64 `yaml:"min_size"`
	MaxSize  float64 `yaml:"max_size"`
	MinSpeed float64 `yaml:"min_speed"`
	MaxSpeed float64 `yaml:"max_speed"`
}

// NestConfig holds nest parameters.
type NestConfig struct {
	Size float64 `yaml:"size"` // Diameter
}

// DayNightConfig holds day/night cycle parameters.
type DayNightConfig struct {
	DayLength       int     `yaml:"day_length"` // Ticks per full cycle
	NightStart      float64 `yaml:"night_start"`
	NightEnd        float64 `yaml:"night_end"`
	NightMultiplier float64 `yaml:"night_multiplier"`
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	SpawnInterval int `yaml:"spawn_interval"` // Ticks between top-up spawns
}

// PlacementConfig holds minimum nest distances for user placement.
type PlacementConfig struct {
	FoodNestDistance     float64 `yaml:"food_nest_distance"`
	ObstacleNestDistance float64 `yaml:"obstacle_nest_distance"`
	PredatorNestDistance float64 `yaml:"predator_nest_distance"`
	DragSpacing          float64 `yaml:"drag_spacing"` // Mouse travel between drag-placed obstacles
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds of simulated time per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// ServerConfig holds websocket transport parameters.
type ServerConfig struct {
	Addr           string  `yaml:"addr"`
	TickRate       float64 `yaml:"tick_rate"`       // Ticks per second
	BroadcastEvery int     `yaml:"broadcast_every"` // Ticks between snapshot broadcasts
}

// TerminalConfig holds text front end parameters.
type TerminalConfig struct {
	TickRate   float64 `yaml:"tick_rate"`   // Ticks per second
	DrawEvery  int     `yaml:"draw_every"`  // Ticks between redraws
	CursorStep int     `yaml:"cursor_step"` // Cells moved per shifted arrow key
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32 // Sim.DT as float32
	ScreenW32  float32
	ScreenH32  float32
	WorldW32   float32 // Effective world width as float32
	WorldH32   float32 // Effective world height as float32
	CellSize32 float32
	GridW      int // Pheromone grid width in cells
	GridH      int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.CellSize <= 0 {
		return fmt.Errorf("world.cell_size must be positive, got %v", c.World.CellSize)
	}
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT)
	}
	if c.Sim.AgentSpeed <= 0 || c.Ant.SpeedFactor <= 0 {
		return fmt.Errorf("sim.agent_speed and ant.speed_factor must be positive, got %v and %v", c.Sim.AgentSpeed, c.Ant.SpeedFactor)
	}
	if c.Ant.Size <= 0 {
		return fmt.Errorf("ant.size must be positive, got %v", c.Ant.Size)
	}
	if c.Ant.DetectionRadius <= 0 {
		return fmt.Errorf("ant.detection_radius must be positive, got %v", c.Ant.DetectionRadius)
	}
	if c.Pheromone.SenseMultiplier <= 0 {
		return fmt.Errorf("pheromone.sense_multiplier must be positive, got %v", c.Pheromone.SenseMultiplier)
	}
	if c.Avoidance.SensorRange <= 0 {
		return fmt.Errorf("avoidance.sensor_range must be positive, got %v", c.Avoidance.SensorRange)
	}
	if c.Avoidance.SensorRays < 1 || c.Avoidance.SensorRays%2 == 0 {
		return fmt.Errorf("avoidance.sensor_rays must be odd, got %d", c.Avoidance.SensorRays)
	}
	if c.Avoidance.HistoryLength < 2 || c.Avoidance.HistoryLength > 32 {
		return fmt.Errorf("avoidance.history_length must be in [2, 32], got %d", c.Avoidance.HistoryLength)
	}
	if c.Population.SpawnInterval <= 0 {
		return fmt.Errorf("population.spawn_interval must be positive, got %d", c.Population.SpawnInterval)
	}
	if c.DayNight.DayLength <= 0 {
		return fmt.Errorf("day_night.day_length must be positive, got %d", c.DayNight.DayLength)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)
	c.Derived.CellSize32 = float32(c.World.CellSize)
	c.Derived.GridW, c.Derived.GridH = GridDims(c.Derived.WorldW32, c.Derived.WorldH32, c.Derived.CellSize32)
}

// GridDims returns the pheromone grid dimensions covering a world of the given size.
func GridDims(worldW, worldH, cellSize float32) (int, int) {
	gw := int(math.Ceil(float64(worldW / cellSize)))
	gh := int(math.Ceil(float64(worldH / cellSize)))
	return max(gw, 1), max(gh, 1)
}

// WithWorldSize returns a copy of c with the given world dimensions.
func (c *Config) WithWorldSize(width, height int) *Config {
	cp := *c
	cp.World.Width = width
	cp.World.Height = height
	cp.computeDerived()
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
