package iocache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/huangsam/dailyxp/internal/contract"
	"github.com/huangsam/dailyxp/schema"
)

// RecordStoreImpl keeps one JSON document per date under a data directory.
type RecordStoreImpl struct {
	dir string
}

var _ contract.RecordStore = &RecordStoreImpl{} // Compile-time check

// NewRecordStore returns a record store rooted at dir. The directory is
// created lazily on the first save.
func NewRecordStore(dir string) *RecordStoreImpl {
	return &RecordStoreImpl{dir: dir}
}

// Dir returns the directory records are stored in.
func (rs *RecordStoreImpl) Dir() string {
	return rs.dir
}

func (rs *RecordStoreImpl) path(date string) string {
	return filepath.Join(rs.dir, date+".json")
}

// Load implements the RecordStore interface.
func (rs *RecordStoreImpl) Load(date string) (schema.DailyRecord, bool, error) {
	var rec schema.DailyRecord
	ok, err := readJSON(rs.path(date), &rec)
	if err != nil || !ok {
		return schema.DailyRecord{}, ok, err
	}
	if rec.Date == "" {
		rec.Date = date
	}
	return rec, true, nil
}

// Save implements the RecordStore interface.
func (rs *RecordStoreImpl) Save(rec schema.DailyRecord) error {
	if _, err := time.Parse(schema.DateLayout, rec.Date); err != nil {
		return fmt.Errorf("refusing to save record with invalid date %q", rec.Date)
	}
	return writeJSON(rs.path(rec.Date), rec)
}

// ListDates implements the RecordStore interface.
func (rs *RecordStoreImpl) ListDates() ([]string, error) {
	entries, err := os.ReadDir(rs.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rs.dir, err)
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if _, err := time.Parse(schema.DateLayout, date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// LatestBefore implements the RecordStore interface.
func (rs *RecordStoreImpl) LatestBefore(date string) (schema.DailyRecord, bool, error) {
	dates, err := rs.ListDates()
	if err != nil {
		return schema.DailyRecord{}, false, err
	}
	for i := len(dates) - 1; i >= 0; i-- {
		if dates[i] < date {
			return rs.Load(dates[i])
		}
	}
	return schema.DailyRecord{}, false, nil
}

// ProfileStoreImpl keeps one JSON profile per engine version.
type ProfileStoreImpl struct {
	dir string
}

var _ contract.ProfileStore = &ProfileStoreImpl{} // Compile-time check

// NewProfileStore returns a profile store rooted at dir.
func NewProfileStore(dir string) *ProfileStoreImpl {
	return &ProfileStoreImpl{dir: dir}
}

// ProfilePath returns the file a version's profile lives in.
func (ps *ProfileStoreImpl) ProfilePath(version schema.EngineVersion) string {
	return filepath.Join(ps.dir, fmt.Sprintf("profile_%s.json", version))
}

// Load implements the ProfileStore interface.
func (ps *ProfileStoreImpl) Load(version schema.EngineVersion) (schema.Profile, bool, error) {
	var p schema.Profile
	ok, err := readJSON(ps.ProfilePath(version), &p)
	if err != nil || !ok {
		return schema.Profile{}, ok, err
	}
	for i := range p.Meta.ScoringLog {
		p.Meta.ScoringLog[i].Version = version
	}
	return p, true, nil
}

// Save implements the ProfileStore interface.
func (ps *ProfileStoreImpl) Save(version schema.EngineVersion, p schema.Profile) error {
	if _, ok := schema.ValidEngineVersions[version]; !ok {
		return fmt.Errorf("unknown engine version %q", version)
	}
	p.Meta.EngineVersion = version
	for i := range p.Meta.ScoringLog {
		p.Meta.ScoringLog[i].Version = version
	}
	return writeJSON(ps.ProfilePath(version), p)
}

// readJSON decodes path into v. A missing file is (false, nil); a file that
// cannot be decoded is an error wrapping ErrCorruptRecord.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, fmt.Errorf("%w: %s is empty", contract.ErrCorruptRecord, path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", contract.ErrCorruptRecord, path, err)
	}
	return true, nil
}

// writeJSON atomically replaces path with the indented encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// writeAtomic writes data to a temp file in the target directory, syncs it
// and renames it over path so readers never see a partial document.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
