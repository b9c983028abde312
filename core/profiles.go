package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/huangsam/dailyxp/core/daily"
	"github.com/huangsam/dailyxp/core/progression"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// GetProfileResults returns the stored profile of one version, or of every
// version when version is empty. A version without a profile yet is shown
// at level one.
func GetProfileResults(cfg *contract.Config, mgr contract.StoreManager, version schema.EngineVersion) ([]schema.Profile, error) {
	algs := progression.All()
	if version != "" {
		alg, ok := progression.For(version)
		if !ok {
			return nil, fmt.Errorf("invalid engine version '%s'. must be v1, v2, v3", version)
		}
		algs = []progression.Algorithm{alg}
	}

	var out []schema.Profile
	for _, alg := range algs {
		p, ok, err := mgr.GetProfileStore().Load(alg.Version())
		if err != nil {
			return nil, err
		}
		if !ok {
			p = progression.Replay(alg, nil)
			p.Name = cfg.Name
		}
		out = append(out, p)
	}
	return out, nil
}

// GetRescoreResults recomputes the stats of every stored record with the
// current weights and then advances or rebuilds the profiles.
func GetRescoreResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, rebuild bool) (schema.RescoreOutcome, error) {
	now := time.Now()
	ctx = beginRun(ctx, mgr, "rescore", cfg, now)
	defer endRun(ctx, mgr)

	records := mgr.GetRecordStore()
	recs, err := loadRecordsSince(records, "")
	if err != nil {
		return schema.RescoreOutcome{}, err
	}
	out := schema.RescoreOutcome{Dates: []string{}, Rebuilt: rebuild}
	for _, rec := range recs {
		rec = daily.Recompute(rec, cfg.Weights, now)
		if err := records.Save(rec); err != nil {
			return out, fmt.Errorf("failed to save record %s: %w", rec.Date, err)
		}
		out.Dates = append(out.Dates, rec.Date)
	}

	if rebuild {
		out.Profiles, err = rebuildProfiles(mgr, cfg, now)
	} else {
		out.Profiles, err = syncProfiles(mgr, cfg, now)
	}
	if err != nil {
		return out, err
	}
	recordDayScores(ctx, mgr, cfg.DateString(), out.Profiles, now)
	return out, nil
}

// GetPricingResults returns the effective pricing table sorted by model.
func GetPricingResults(cfg *contract.Config) []schema.PricingRow {
	rows := make([]schema.PricingRow, 0, len(cfg.Pricing))
	for model, rate := range cfg.Pricing {
		rows = append(rows, schema.PricingRow{Model: model, ModelRate: rate, Default: model == cfg.DefaultModel})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Model < rows[j].Model })
	return rows
}

// syncProfiles advances every engine with the stored records from its last
// logged day onward and saves the result.
func syncProfiles(mgr contract.StoreManager, cfg *contract.Config, now time.Time) ([]schema.Profile, error) {
	store := mgr.GetProfileStore()
	algs := progression.All()

	priors := make([]schema.Profile, len(algs))
	since := ""
	for i, alg := range algs {
		prior, _, err := store.Load(alg.Version())
		if err != nil {
			return nil, err
		}
		priors[i] = prior
		if last := prior.LastLogDate(); i == 0 || last < since {
			since = last
		}
	}

	recs, err := loadRecordsSince(mgr.GetRecordStore(), since)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Profile, 0, len(algs))
	for i, alg := range algs {
		last := priors[i].LastLogDate()
		var days []schema.DaySignals
		for _, rec := range recs {
			if rec.Date >= last {
				days = append(days, progression.SignalsFrom(rec))
			}
		}
		p, err := saveProfile(store, alg, progression.Advance(alg, priors[i], days), priors[i], cfg, now)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// rebuildProfiles replays every engine from scratch over all stored records.
func rebuildProfiles(mgr contract.StoreManager, cfg *contract.Config, now time.Time) ([]schema.Profile, error) {
	store := mgr.GetProfileStore()
	recs, err := loadRecordsSince(mgr.GetRecordStore(), "")
	if err != nil {
		return nil, err
	}
	days := make([]schema.DaySignals, 0, len(recs))
	for _, rec := range recs {
		days = append(days, progression.SignalsFrom(rec))
	}

	var out []schema.Profile
	for _, alg := range progression.All() {
		prior, _, err := store.Load(alg.Version())
		if err != nil {
			return nil, err
		}
		p, err := saveProfile(store, alg, progression.Rebuild(alg, days), prior, cfg, now)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// saveProfile stamps the display name and update time and persists p.
// A configured name wins over the stored one; the default name never does.
func saveProfile(store contract.ProfileStore, alg progression.Algorithm, p, prior schema.Profile, cfg *contract.Config, now time.Time) (schema.Profile, error) {
	switch {
	case cfg.Name != "" && cfg.Name != contract.DefaultName:
		p.Name = cfg.Name
	case prior.Name != "":
		p.Name = prior.Name
	}
	p.UpdatedAt = now.Format(time.RFC3339)
	if err := store.Save(alg.Version(), p); err != nil {
		return p, fmt.Errorf("failed to save %s profile: %w", alg.Version(), err)
	}
	return p, nil
}
