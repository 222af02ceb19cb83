// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists deduplication runs in SQLite: one row per run,
// its duplicate groups with their members, and the deduplicated records.
// Records are stored as JSON documents; the columns beside them exist for
// ad-hoc SQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

// ErrRunNotFound is returned when a run ID has no stored run.
var ErrRunNotFound = errors.New("run not found")

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// RunSummary describes a stored run without its records.
type RunSummary struct {
	ID                         string                             `json:"id" yaml:"id"`
	CreatedAt                  time.Time                          `json:"created_at" yaml:"created_at"`
	OriginalCount              int                                `json:"original_count" yaml:"original_count"`
	DeduplicatedCount          int                                `json:"deduplicated_count" yaml:"deduplicated_count"`
	DuplicatesRemoved          int                                `json:"duplicates_removed" yaml:"duplicates_removed"`
	GroupCount                 int                                `json:"group_count" yaml:"group_count"`
	StageCounts                map[types.MatchStage]int           `json:"stage_counts" yaml:"stage_counts"`
	StageDurations             map[types.MatchStage]time.Duration `json:"stage_durations" yaml:"stage_durations"`
	ProcessingTime             time.Duration                      `json:"processing_time" yaml:"processing_time"`
	IndexStats                 types.IndexStats                   `json:"index_stats" yaml:"index_stats"`
	NearMisses                 int                                `json:"near_misses" yaml:"near_misses"`
	EstimatedFalsePositiveRate float64                            `json:"estimated_false_positive_rate" yaml:"estimated_false_positive_rate"`
	EstimatedFalseNegativeRate float64                            `json:"estimated_false_negative_rate" yaml:"estimated_false_negative_rate"`
}

// Run is a stored run with its groups and deduplicated records.
type Run struct {
	RunSummary `yaml:",inline"`
	Groups     []types.DuplicateGroup `json:"groups" yaml:"groups"`
	Papers     []types.Paper          `json:"papers" yaml:"papers"`
}

// Result rebuilds the DeduplicationResult the run was saved from.
func (r Run) Result() types.DeduplicationResult {
	res := types.DeduplicationResult{
		OriginalCount:              r.OriginalCount,
		DeduplicatedCount:          r.DeduplicatedCount,
		DuplicatesRemoved:          r.DuplicatesRemoved,
		Papers:                     r.Papers,
		Groups:                     r.Groups,
		StageCounts:                r.StageCounts,
		StageDurations:             r.StageDurations,
		ProcessingTime:             r.ProcessingTime,
		IndexStats:                 r.IndexStats,
		NearMisses:                 r.NearMisses,
		EstimatedFalsePositiveRate: r.EstimatedFalsePositiveRate,
		EstimatedFalseNegativeRate: r.EstimatedFalseNegativeRate,
	}
	for _, g := range r.Groups {
		res.Confidence.Add(g.MergeConfidence)
	}
	return res
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("store path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			original_count INTEGER NOT NULL,
			deduplicated_count INTEGER NOT NULL,
			duplicates_removed INTEGER NOT NULL,
			group_count INTEGER NOT NULL,
			stage_counts TEXT,
			stage_durations TEXT,
			processing_ns INTEGER,
			index_stats TEXT,
			near_misses INTEGER,
			fp_rate REAL,
			fn_rate REAL
		)`,
		`CREATE TABLE IF NOT EXISTS duplicate_groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			stage TEXT NOT NULL,
			confidence REAL NOT NULL,
			evidence TEXT,
			member_sources TEXT,
			selected TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_groups_run_id ON duplicate_groups(run_id)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			group_id INTEGER NOT NULL REFERENCES duplicate_groups(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (group_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT,
			year INTEGER,
			doi TEXT,
			arxiv_id TEXT,
			record TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores res under a new run ID and returns the ID.
func (s *Store) SaveRun(ctx context.Context, res types.DeduplicationResult) (string, error) {
	id := uuid.NewString()

	stageCounts, _ := json.Marshal(res.StageCounts)
	stageDurations, _ := json.Marshal(res.StageDurations)
	indexStats, _ := json.Marshal(res.IndexStats)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, original_count, deduplicated_count, duplicates_removed,
			group_count, stage_counts, stage_durations, processing_ns, index_stats, near_misses, fp_rate, fn_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(timeFormat),
		res.OriginalCount, res.DeduplicatedCount, res.DuplicatesRemoved, len(res.Groups),
		string(stageCounts), string(stageDurations), int64(res.ProcessingTime), string(indexStats),
		res.NearMisses, res.EstimatedFalsePositiveRate, res.EstimatedFalseNegativeRate,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	if err := insertGroups(ctx, tx, id, res.Groups); err != nil {
		return "", err
	}
	if err := insertPapers(ctx, tx, id, res.Papers); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

func insertGroups(ctx context.Context, tx *sql.Tx, runID string, groups []types.DuplicateGroup) error {
	memberStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO group_members (group_id, position, record) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing member insert: %w", err)
	}
	defer memberStmt.Close()

	for i, g := range groups {
		evidence, _ := json.Marshal(g.Evidence)
		sources, _ := json.Marshal(g.MemberSources)
		selected, err := json.Marshal(g.Selected)
		if err != nil {
			return fmt.Errorf("encoding group %d: %w", i, err)
		}
		r, err := tx.ExecContext(ctx,
			`INSERT INTO duplicate_groups (run_id, position, stage, confidence, evidence, member_sources, selected)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, i, string(g.Stage), g.MergeConfidence, string(evidence), string(sources), string(selected),
		)
		if err != nil {
			return fmt.Errorf("inserting group %d: %w", i, err)
		}
		groupID, err := r.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading group id: %w", err)
		}
		for j, m := range g.Members {
			record, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("encoding group %d member %d: %w", i, j, err)
			}
			if _, err := memberStmt.ExecContext(ctx, groupID, j, string(record)); err != nil {
				return fmt.Errorf("inserting group %d member %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func insertPapers(ctx context.Context, tx *sql.Tx, runID string, papers []types.Paper) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (run_id, position, title, year, doi, arxiv_id, record) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing paper insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range papers {
		record, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding paper %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, p.Title, p.Year, p.IDs.DOI, p.IDs.ArxivID, string(record)); err != nil {
			return fmt.Errorf("inserting paper %d: %w", i, err)
		}
	}
	return nil
}

const summaryColumns = `id, created_at, original_count, deduplicated_count, duplicates_removed,
	group_count, stage_counts, stage_durations, processing_ns, index_stats, near_misses, fp_rate, fn_rate`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (RunSummary, error) {
	var (
		rs                                   RunSummary
		created                              string
		stageCounts, stageDurations, idxJSON sql.NullString
		processing                           sql.NullInt64
		nearMisses                           sql.NullInt64
		fp, fn                               sql.NullFloat64
	)
	err := row.Scan(&rs.ID, &created, &rs.OriginalCount, &rs.DeduplicatedCount, &rs.DuplicatesRemoved,
		&rs.GroupCount, &stageCounts, &stageDurations, &processing, &idxJSON, &nearMisses, &fp, &fn)
	if err != nil {
		return rs, err
	}
	if t, err := time.Parse(timeFormat, created); err == nil {
		rs.CreatedAt = t
	}
	if stageCounts.String != "" {
		json.Unmarshal([]byte(stageCounts.String), &rs.StageCounts)
	}
	if stageDurations.String != "" {
		json.Unmarshal([]byte(stageDurations.String), &rs.StageDurations)
	}
	if idxJSON.String != "" {
		json.Unmarshal([]byte(idxJSON.String), &rs.IndexStats)
	}
	rs.ProcessingTime = time.Duration(processing.Int64)
	rs.NearMisses = int(nearMisses.Int64)
	rs.EstimatedFalsePositiveRate = fp.Float64
	rs.EstimatedFalseNegativeRate = fn.Float64
	return rs, nil
}

// ListRuns returns every stored run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		rs, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// LoadRun returns the run stored under id, or ErrRunNotFound.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	rs, err := scanSummary(s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	run := &Run{RunSummary: rs}
	if run.Groups, err = s.loadGroups(ctx, id); err != nil {
		return nil, err
	}
	if run.Papers, err = s.loadPapers(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) loadGroups(ctx context.Context, runID string) ([]types.DuplicateGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stage, confidence, evidence, member_sources, selected
		 FROM duplicate_groups WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}

	var (
		groups []types.DuplicateGroup
		ids    []int64
	)
	for rows.Next() {
		var (
			g                         types.DuplicateGroup
			id                        int64
			stage, selected           string
			evidenceJSON, sourcesJSON sql.NullString
		)
		if err := rows.Scan(&id, &stage, &g.MergeConfidence, &evidenceJSON, &sourcesJSON, &selected); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		g.Stage = types.MatchStage(stage)
		json.Unmarshal([]byte(evidenceJSON.String), &g.Evidence)
		json.Unmarshal([]byte(sourcesJSON.String), &g.MemberSources)
		if err := json.Unmarshal([]byte(selected), &g.Selected); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding group record: %w", err)
		}
		groups = append(groups, g)
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		members, err := s.loadRecords(ctx,
			`SELECT record FROM group_members WHERE group_id = ? ORDER BY position`, id)
		if err != nil {
			return nil, fmt.Errorf("loading group members: %w", err)
		}
		groups[i].Members = members
	}
	return groups, nil
}

func (s *Store) loadPapers(ctx context.Context, runID string) ([]types.Paper, error) {
	papers, err := s.loadRecords(ctx, `SELECT record FROM papers WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading papers: %w", err)
	}
	return papers, nil
}

func (s *Store) loadRecords(ctx context.Context, query string, arg any) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Paper
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		var p types.Paper
		if err := json.Unmarshal([]byte(record), &p); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything stored with it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	r, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
