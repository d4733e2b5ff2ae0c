// Package resultstore keeps a SQLite history of barrier runs so timings can
// be compared across barriers and group sizes.
package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/bacalhau-project/gtbarrier/pkg/runner"
)

const driverName = "sqlite"

const schema = `
create table if not exists results (
	id           text primary key,
	kind         text not null,
	barrier      text not null,
	participants integer not null,
	processes    integer not null,
	proc_rank    integer not null,
	rounds       integer not null,
	wall_ns      integer not null,
	cpu_ns       integer not null,
	avg_ns       integer not null,
	started_ns   integer not null
);
create index if not exists results_barrier on results (barrier, participants);
`

// Filter narrows List.
type Filter struct {
	Barrier string
	Kind    runner.Mode
	// Limit caps the number of rows, newest first. Zero means no cap.
	Limit int
}

// Summary aggregates runs of one barrier at one group size.
type Summary struct {
	Barrier      string        `json:"barrier"`
	Participants int           `json:"participants"`
	Runs         int           `json:"runs"`
	AvgPerRound  time.Duration `json:"avgPerRound"`
	MinPerRound  time.Duration `json:"minPerRound"`
	MaxPerRound  time.Duration `json:"maxPerRound"`
	CPUPerRound  time.Duration `json:"cpuPerRound"`
}

type Store struct {
	mtx sync.RWMutex
	db  *sql.DB
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create results directory %s", dir)
		}
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open results database %s", path)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create results schema")
	}

	s := &Store{db: db}
	s.mtx.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        fmt.Sprintf("ResultStore[%s].mtx", path),
	})
	log.Ctx(ctx).Debug().Str("Path", path).Msg("opened results database")
	return s, nil
}

func (s *Store) Save(ctx context.Context, r runner.Result) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	_, err := s.db.ExecContext(ctx, `
insert into results (id, kind, barrier, participants, processes, proc_rank, rounds, wall_ns, cpu_ns, avg_ns, started_ns)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Kind), r.Barrier, r.Participants, r.Processes, r.Rank, r.Rounds,
		int64(r.Wall), int64(r.CPU), int64(r.AvgPerRound), r.StartedAt.UnixNano(),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to save result %s", r.ID)
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]runner.Result, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var (
		where []string
		args  []any
	)
	if filter.Barrier != "" {
		args = append(args, filter.Barrier)
		where = append(where, "barrier = ?")
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where = append(where, "kind = ?")
	}
	query := `select id, kind, barrier, participants, processes, proc_rank, rounds, wall_ns, cpu_ns, avg_ns, started_ns from results`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by started_ns desc"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " limit ?"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list results")
	}
	defer rows.Close()

	var out []runner.Result
	for rows.Next() {
		var (
			r                        runner.Result
			kind                     string
			wall, cpu, avgN, started int64
		)
		if err = rows.Scan(&r.ID, &kind, &r.Barrier, &r.Participants, &r.Processes, &r.Rank, &r.Rounds,
			&wall, &cpu, &avgN, &started); err != nil {
			return nil, errors.Wrap(err, "failed to read result")
		}
		r.Kind = runner.Mode(kind)
		r.Wall, r.CPU, r.AvgPerRound = time.Duration(wall), time.Duration(cpu), time.Duration(avgN)
		r.StartedAt = time.Unix(0, started).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary returns per barrier and group size statistics of the average
// round time, and the average CPU time per round.
func (s *Store) Summary(ctx context.Context) ([]Summary, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
select barrier, participants, count(*), avg(avg_ns), min(avg_ns), max(avg_ns),
	coalesce(avg(case when rounds > 0 then cast(cpu_ns as real) / rounds end), 0)
from results
group by barrier, participants
order by barrier, participants`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarise results")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum         Summary
			avg, cpuAvg float64
			lo, hi      int64
		)
		if err = rows.Scan(&sum.Barrier, &sum.Participants, &sum.Runs, &avg, &lo, &hi, &cpuAvg); err != nil {
			return nil, errors.Wrap(err, "failed to read summary")
		}
		sum.AvgPerRound = time.Duration(avg)
		sum.MinPerRound = time.Duration(lo)
		sum.MaxPerRound = time.Duration(hi)
		sum.CPUPerRound = time.Duration(cpuAvg)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.db.Close()
}
