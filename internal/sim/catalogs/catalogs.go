package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
)

//go:embed data/*.yaml
var embedded embed.FS

// Catalogs is the immutable content of a game: enemy stats, faction tables,
// leads and missions. It is expanded from faction templates once at load.
type Catalogs struct {
	Enemies         EnemyCatalog
	ActivityLevels  ActivityCatalog
	OperationLevels OperationCatalog
	Factions        FactionCatalog
	Leads           LeadCatalog
	Missions        MissionCatalog
}

type EnemyCatalog struct {
	ByID   map[string]EnemyDef
	Digest string
}

type EnemyDef struct {
	ID        string   `yaml:"id"`
	Skill     fixed6.F `yaml:"skill"`
	HitPoints fixed6.F `yaml:"hit_points"`
	WeaponMin int      `yaml:"weapon_min"`
	WeaponMax int      `yaml:"weapon_max"`
}

type ActivityCatalog struct {
	Levels []ActivityLevelDef
	Digest string
}

// Never marks a range that is never rolled.
const Never = -1

type ActivityLevelDef struct {
	Level              int      `yaml:"level"`
	Name               string   `yaml:"name"`
	Progression        [2]int   `yaml:"progression"`
	OperationFrequency [2]int   `yaml:"operation_frequency"`
	PanicPerTurn       fixed6.F `yaml:"panic_per_turn"`
	OperationWeights   [6]int   `yaml:"operation_weights"`
}

type OperationCatalog struct {
	Levels []OperationLevelDef
	Digest string
}

type OperationLevelDef struct {
	Level          int      `yaml:"level"`
	Money          int      `yaml:"money"`
	FundingReward  int      `yaml:"funding_reward"`
	FundingPenalty int      `yaml:"funding_penalty"`
	PanicIncrease  fixed6.F `yaml:"panic_increase"`
	Suppression    int      `yaml:"suppression"`
	ExpiresIn      int      `yaml:"expires_in"`
	Existential    bool     `yaml:"existential"`
}

type FactionCatalog struct {
	Defs   []FactionDef
	ByID   map[string]FactionDef
	Digest string
}

type FactionDef struct {
	ID                   string `yaml:"id"`
	Name                 string `yaml:"name"`
	InitialActivityLevel int    `yaml:"initial_activity_level"`
}

type LeadCatalog struct {
	// Order is the declaration order after expansion; the AI walks it.
	Order []string
	ByID  map[string]LeadDef
}

type LeadDef struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	FactionID  string   `yaml:"-"`
	Difficulty fixed6.F `yaml:"difficulty"`
	Repeatable bool     `yaml:"repeatable"`
	// DependsOn names leads (completed at least once) or missions (won at
	// least once).
	DependsOn []string `yaml:"depends_on"`
	Missions  []string `yaml:"missions"`
	WinsGame  bool     `yaml:"wins_game"`
}

type MissionCatalog struct {
	ByID map[string]MissionDef
	// Defensive is keyed by faction id, indexed by operation level - 1.
	Defensive map[string][]string
}

type MissionDef struct {
	ID             string       `yaml:"id"`
	Name           string       `yaml:"name"`
	FactionID      string       `yaml:"-"`
	OperationLevel int          `yaml:"-"`
	ExpiresIn      int          `yaml:"expires_in"`
	Enemies        []EnemyCount `yaml:"enemies"`
	Rewards        Rewards      `yaml:"rewards"`
}

func (m MissionDef) Defensive() bool { return m.OperationLevel > 0 }

type EnemyCount struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

type Rewards struct {
	Money          int      `yaml:"money"`
	Funding        int      `yaml:"funding"`
	Intel          fixed6.F `yaml:"intel"`
	PanicReduction fixed6.F `yaml:"panic_reduction"`
	Suppression    int      `yaml:"suppression"`
	DefeatsFaction bool     `yaml:"defeats_faction"`
}

// Load parses the embedded content.
func Load() (*Catalogs, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// MustLoad is Load for callers that treat broken embedded content as fatal.
func MustLoad() *Catalogs {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFS parses content from fsys, which must hold enemies.yaml,
// activity_levels.yaml, operation_levels.yaml and factions.yaml.
func LoadFS(fsys fs.FS) (*Catalogs, error) {
	var c Catalogs
	if err := loadEnemies(fsys, &c.Enemies); err != nil {
		return nil, err
	}
	if err := loadActivityLevels(fsys, &c.ActivityLevels); err != nil {
		return nil, err
	}
	if err := loadOperationLevels(fsys, &c.OperationLevels); err != nil {
		return nil, err
	}
	if err := loadFactions(fsys, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func readYAML(fsys fs.FS, name string, out any) (string, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return sha256Hex(raw), nil
}

func loadEnemies(fsys fs.FS, out *EnemyCatalog) error {
	var doc struct {
		Enemies []EnemyDef `yaml:"enemies"`
	}
	digest, err := readYAML(fsys, "enemies.yaml", &doc)
	if err != nil {
		return err
	}
	out.Digest = digest
	out.ByID = map[string]EnemyDef{}
	for _, d := range doc.Enemies {
		if d.ID == "" {
			return fmt.Errorf("enemies.yaml: empty id")
		}
		if d.HitPoints <= 0 || d.WeaponMin > d.WeaponMax {
			return fmt.Errorf("enemies.yaml: %s: invalid stats", d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadActivityLevels(fsys fs.FS, out *ActivityCatalog) error {
	var doc struct {
		Levels []ActivityLevelDef `yaml:"activity_levels"`
	}
	digest, err := readYAML(fsys, "activity_levels.yaml", &doc)
	if err != nil {
		return err
	}
	out.Digest = digest
	for i, l := range doc.Levels {
		if l.Level != i {
			return fmt.Errorf("activity_levels.yaml: level %d out of order", l.Level)
		}
	}
	if len(doc.Levels) != 8 {
		return fmt.Errorf("activity_levels.yaml: want 8 levels, got %d", len(doc.Levels))
	}
	out.Levels = doc.Levels
	return nil
}

func loadOperationLevels(fsys fs.FS, out *OperationCatalog) error {
	var doc struct {
		Levels []OperationLevelDef `yaml:"operation_levels"`
	}
	digest, err := readYAML(fsys, "operation_levels.yaml", &doc)
	if err != nil {
		return err
	}
	out.Digest = digest
	if len(doc.Levels) != 6 {
		return fmt.Errorf("operation_levels.yaml: want 6 levels, got %d", len(doc.Levels))
	}
	for i, l := range doc.Levels {
		if l.Level != i+1 {
			return fmt.Errorf("operation_levels.yaml: level %d out of order", l.Level)
		}
	}
	out.Levels = doc.Levels
	return nil
}

type defensiveTemplate struct {
	Enemies []EnemyCount `yaml:"enemies"`
}

func loadFactions(fsys fs.FS, c *Catalogs) error {
	var doc struct {
		Factions  []FactionDef `yaml:"factions"`
		Templates struct {
			Leads             []LeadDef           `yaml:"leads"`
			OffensiveMissions []MissionDef        `yaml:"offensive_missions"`
			DefensiveMissions []defensiveTemplate `yaml:"defensive_missions"`
		} `yaml:"templates"`
		Leads []LeadDef `yaml:"leads"`
	}
	digest, err := readYAML(fsys, "factions.yaml", &doc)
	if err != nil {
		return err
	}
	c.Factions = FactionCatalog{Defs: doc.Factions, ByID: map[string]FactionDef{}, Digest: digest}
	c.Leads = LeadCatalog{ByID: map[string]LeadDef{}}
	c.Missions = MissionCatalog{ByID: map[string]MissionDef{}, Defensive: map[string][]string{}}

	if len(doc.Templates.DefensiveMissions) != len(c.OperationLevels.Levels) {
		return fmt.Errorf("factions.yaml: want %d defensive templates, got %d",
			len(c.OperationLevels.Levels), len(doc.Templates.DefensiveMissions))
	}

	addLead := func(l LeadDef) error {
		if l.ID == "" {
			return fmt.Errorf("factions.yaml: lead with empty id")
		}
		if _, dup := c.Leads.ByID[l.ID]; dup {
			return fmt.Errorf("factions.yaml: duplicate lead %s", l.ID)
		}
		c.Leads.ByID[l.ID] = l
		c.Leads.Order = append(c.Leads.Order, l.ID)
		return nil
	}
	addMission := func(m MissionDef) error {
		if _, dup := c.Missions.ByID[m.ID]; dup {
			return fmt.Errorf("factions.yaml: duplicate mission %s", m.ID)
		}
		c.Missions.ByID[m.ID] = m
		return nil
	}

	// Global leads without faction dependencies come first so that the
	// walk order matches the unlock order.
	var tail []LeadDef
	for _, l := range doc.Leads {
		if len(l.DependsOn) == 0 {
			if err := addLead(l); err != nil {
				return err
			}
		} else {
			tail = append(tail, l)
		}
	}

	for _, f := range doc.Factions {
		if f.ID == "" {
			return fmt.Errorf("factions.yaml: faction with empty id")
		}
		c.Factions.ByID[f.ID] = f
		r := strings.NewReplacer("{f}", f.ID, "{name}", f.Name)

		for _, t := range doc.Templates.Leads {
			l := t
			l.ID = r.Replace(t.ID)
			l.Name = r.Replace(t.Name)
			l.FactionID = f.ID
			l.DependsOn = replaceAll(r, t.DependsOn)
			l.Missions = replaceAll(r, t.Missions)
			if err := addLead(l); err != nil {
				return err
			}
		}
		for _, t := range doc.Templates.OffensiveMissions {
			m := t
			m.ID = r.Replace(t.ID)
			m.Name = r.Replace(t.Name)
			m.FactionID = f.ID
			m.Enemies = append([]EnemyCount(nil), t.Enemies...)
			if err := addMission(m); err != nil {
				return err
			}
		}
		ids := make([]string, 0, len(doc.Templates.DefensiveMissions))
		for i, t := range doc.Templates.DefensiveMissions {
			op := c.OperationLevels.Levels[i]
			m := MissionDef{
				ID:             fmt.Sprintf("mission-defend-%s-l%d", f.ID, op.Level),
				Name:           fmt.Sprintf("Counter %s operation (level %d)", f.Name, op.Level),
				FactionID:      f.ID,
				OperationLevel: op.Level,
				ExpiresIn:      op.ExpiresIn,
				Enemies:        append([]EnemyCount(nil), t.Enemies...),
				Rewards: Rewards{
					Money:       op.Money,
					Funding:     op.FundingReward,
					Suppression: op.Suppression,
				},
			}
			if err := addMission(m); err != nil {
				return err
			}
			ids = append(ids, m.ID)
		}
		c.Missions.Defensive[f.ID] = ids
	}

	for _, l := range tail {
		if err := addLead(l); err != nil {
			return err
		}
	}
	return nil
}

func replaceAll(r *strings.Replacer, in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = r.Replace(s)
	}
	return out
}

func (c *Catalogs) validate() error {
	for _, id := range c.Leads.Order {
		l := c.Leads.ByID[id]
		if l.Difficulty <= 0 {
			return fmt.Errorf("lead %s: difficulty must be positive", id)
		}
		for _, dep := range l.DependsOn {
			_, isLead := c.Leads.ByID[dep]
			_, isMission := c.Missions.ByID[dep]
			if !isLead && !isMission {
				return fmt.Errorf("lead %s: unknown dependency %s", id, dep)
			}
		}
		for _, m := range l.Missions {
			if _, ok := c.Missions.ByID[m]; !ok {
				return fmt.Errorf("lead %s: unknown mission %s", id, m)
			}
		}
	}
	for _, id := range c.Missions.IDs() {
		m := c.Missions.ByID[id]
		if len(m.Enemies) == 0 {
			return fmt.Errorf("mission %s: no enemies", id)
		}
		for _, e := range m.Enemies {
			if _, ok := c.Enemies.ByID[e.Type]; !ok {
				return fmt.Errorf("mission %s: unknown enemy %s", id, e.Type)
			}
			if e.Count <= 0 {
				return fmt.Errorf("mission %s: enemy %s count must be positive", id, e.Type)
			}
		}
	}
	for _, f := range c.Factions.Defs {
		if f.InitialActivityLevel < 0 || f.InitialActivityLevel >= len(c.ActivityLevels.Levels) {
			return fmt.Errorf("faction %s: activity level %d out of range", f.ID, f.InitialActivityLevel)
		}
	}
	return nil
}

// IDs returns every mission id in sorted order.
func (m MissionCatalog) IDs() []string {
	ids := make([]string, 0, len(m.ByID))
	for id := range m.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Activity returns the table row for level, clamped to the table bounds.
func (c *Catalogs) Activity(level int) ActivityLevelDef {
	if level < 0 {
		level = 0
	}
	if level >= len(c.ActivityLevels.Levels) {
		level = len(c.ActivityLevels.Levels) - 1
	}
	return c.ActivityLevels.Levels[level]
}

// Operation returns the table row for an operation level in 1..6.
func (c *Catalogs) Operation(level int) (OperationLevelDef, bool) {
	if level < 1 || level > len(c.OperationLevels.Levels) {
		return OperationLevelDef{}, false
	}
	return c.OperationLevels.Levels[level-1], true
}

// MaxActivityLevel is the highest activity level in the table.
func (c *Catalogs) MaxActivityLevel() int { return len(c.ActivityLevels.Levels) - 1 }

// LeadForMission returns the lead whose completion spawns missionID.
func (c *Catalogs) LeadForMission(missionID string) (LeadDef, bool) {
	for _, id := range c.Leads.Order {
		l := c.Leads.ByID[id]
		for _, m := range l.Missions {
			if m == missionID {
				return l, true
			}
		}
	}
	return LeadDef{}, false
}

// Digests summarizes the loaded content for snapshots and logs.
func (c *Catalogs) Digests() map[string]string {
	return map[string]string{
		"enemies":          c.Enemies.Digest,
		"activity_levels":  c.ActivityLevels.Digest,
		"operation_levels": c.OperationLevels.Digest,
		"factions":         c.Factions.Digest,
	}
}
