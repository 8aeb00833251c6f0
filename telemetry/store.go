package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store archives runs and their window stats in SQLite so parameter
// sweeps can be compared after the fact.
type Store struct {
	conn *sqlx.DB
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID                string  `db:"id"`
	Seed              int64   `db:"seed"`
	StartedAt         int64   `db:"started_at"`
	AgentTarget       int     `db:"agent_target"`
	FoodSourceTarget  int     `db:"food_source_target"`
	PheromoneStrength float64 `db:"pheromone_strength"`
	EvaporationRate   float64 `db:"evaporation_rate"`
	AgentSpeed        float64 `db:"agent_speed"`
	DayNight          bool    `db:"day_night"`
	FinalTick         int32   `db:"final_tick"`
	FoodCollected     int     `db:"food_collected"`
	Efficiency        int     `db:"efficiency"`
}

// OpenStore opens or creates a SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		agent_target INTEGER NOT NULL,
		food_source_target INTEGER NOT NULL,
		pheromone_strength REAL NOT NULL,
		evaporation_rate REAL NOT NULL,
		agent_speed REAL NOT NULL,
		day_night INTEGER NOT NULL,
		final_tick INTEGER NOT NULL DEFAULT 0,
		food_collected INTEGER NOT NULL DEFAULT 0,
		efficiency INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS windows (
		run_id TEXT NOT NULL,
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		agents INTEGER NOT NULL,
		food_sources INTEGER NOT NULL,
		pickups INTEGER NOT NULL,
		deliveries INTEGER NOT NULL,
		deaths_starved INTEGER NOT NULL,
		deaths_old_age INTEGER NOT NULL,
		deaths_eaten INTEGER NOT NULL,
		food_collected INTEGER NOT NULL,
		efficiency INTEGER NOT NULL,
		energy_mean REAL NOT NULL,
		home_mass REAL NOT NULL,
		food_mass REAL NOT NULL,
		PRIMARY KEY (run_id, window_end)
	);

	CREATE INDEX IF NOT EXISTS idx_windows_run ON windows(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// BeginRun inserts a new run row. An empty run.ID is filled with a fresh UUID.
func (s *Store) BeginRun(run *RunRecord) error {
	if s == nil {
		return nil
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt == 0 {
		run.StartedAt = time.Now().Unix()
	}
	_, err := s.conn.NamedExec(`INSERT INTO runs
		(id, seed, started_at, agent_target, food_source_target, pheromone_strength,
		 evaporation_rate, agent_speed, day_night, final_tick, food_collected, efficiency)
		VALUES (:id, :seed, :started_at, :agent_target, :food_source_target, :pheromone_strength,
		 :evaporation_rate, :agent_speed, :day_night, :final_tick, :food_collected, :efficiency)`, run)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	slog.Debug("run started", "run_id", run.ID, "seed", run.Seed)
	return nil
}

// SaveWindow appends one window of stats for a run.
func (s *Store) SaveWindow(runID string, w WindowStats) error {
	if s == nil {
		return nil
	}
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO windows
		(run_id, window_end, sim_time, agents, food_sources, pickups, deliveries,
		 deaths_starved, deaths_old_age, deaths_eaten, food_collected, efficiency,
		 energy_mean, home_mass, food_mass)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, w.WindowEndTick, w.SimTimeSec, w.Agents, w.FoodSources, w.Pickups, w.Deliveries,
		w.DeathsStarved, w.DeathsOldAge, w.DeathsEaten, w.FoodCollected, w.Efficiency,
		w.EnergyMean, w.HomeMass, w.FoodMass,
	)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}
	return nil
}

// FinishRun records the final counters of a run.
func (s *Store) FinishRun(runID string, tick int32, foodCollected, efficiency int) error {
	if s == nil {
		return nil
	}
	_, err := s.conn.Exec(
		"UPDATE runs SET final_tick = ?, food_collected = ?, efficiency = ? WHERE id = ?",
		tick, foodCollected, efficiency, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Run returns a single run by ID.
func (s *Store) Run(id string) (RunRecord, error) {
	var r RunRecord
	err := s.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	return r, err
}

// BestRuns returns the runs with the highest efficiency.
func (s *Store) BestRuns(limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := s.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY efficiency DESC, food_collected DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// WindowCount returns how many windows are stored for a run.
func (s *Store) WindowCount(runID string) (int, error) {
	var n int
	err := s.conn.Get(&n, "SELECT COUNT(*) FROM windows WHERE run_id = ?", runID)
	return n, err
}
