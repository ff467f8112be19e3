package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/shoplog/internal/ledger"
)

//go:embed schema.cue
var schemaCUE string

// rawConfig mirrors the CUE #Config shape for decoding.
type rawConfig struct {
	Salt   string `json:"salt"`
	Member struct {
		LookbackDays  int     `json:"lookback_days"`
		TriggerAmount float64 `json:"trigger_amount"`
	} `json:"member"`
	RefundWindowDays int                `json:"refund_window_days"`
	MaxPoints        float64            `json:"max_points"`
	Rates            map[string]float64 `json:"rates"`
	SpecialUsers     []string           `json:"special_users"`
	ManualMembers    map[string]string  `json:"manual_members"`
}

// Load reads a CUE config file, unifies it with the embedded schema, and
// returns the resolved configuration.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse unifies raw CUE config bytes with the embedded schema and decodes
// the result. The filename is used for error positions only.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile embedded schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config: %w", err)
	}

	merged := schema.Unify(user)
	if err := merged.Err(); err != nil {
		return Config{}, fmt.Errorf("unify config with schema: %w", err)
	}

	cfgVal := merged.LookupPath(cue.ParsePath("config"))
	if !cfgVal.Exists() {
		return Config{}, fmt.Errorf("config: missing top-level \"config\" field in %s", filename)
	}
	if err := cfgVal.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	var raw rawConfig
	if err := cfgVal.Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Config{
		Salt:             raw.Salt,
		LookbackDays:     raw.Member.LookbackDays,
		TriggerAmount:    raw.Member.TriggerAmount,
		RefundWindowDays: raw.RefundWindowDays,
		MaxPoints:        raw.MaxPoints,
		Rates:            make(map[ledger.Tier]float64, len(raw.Rates)),
		SpecialUsers:     make(map[string]bool, len(raw.SpecialUsers)),
		ManualExpiry:     make(map[string]time.Time, len(raw.ManualMembers)),
	}

	for tier, rate := range raw.Rates {
		cfg.Rates[ledger.Tier(tier)] = rate
	}
	for _, id := range raw.SpecialUsers {
		cfg.SpecialUsers[id] = true
	}
	for id, expiry := range raw.ManualMembers {
		t, err := parseExpiry(expiry)
		if err != nil {
			return Config{}, fmt.Errorf("manual_members[%s]: %w", id, err)
		}
		cfg.ManualExpiry[id] = t
	}

	return cfg, nil
}

// parseExpiry accepts a bare date or a full RFC 3339 timestamp. Bare dates
// expire at midnight UTC at the start of that day.
func parseExpiry(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry date %q: want 2006-01-02 or RFC 3339", s)
	}
	return t, nil
}
