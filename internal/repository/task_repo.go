package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `task_id, coalesce(instructions,''), status, outcome, coalesce(output,''), coalesce(error,''), snapshot, created_at, updated_at, finished_at`

func (r *TaskRepo) RecordCreated(ctx context.Context, taskID, instructions string) error {
	if taskID == "" {
		return errors.New("task_id 不能为空")
	}
	_, err := r.pool.Exec(ctx, `
insert into browser_task(task_id, instructions, status, outcome)
values ($1, $2, 'created', $3)
on conflict (task_id) do update
set instructions = excluded.instructions,
    updated_at = now()
`, taskID, instructions, OutcomePending)
	return err
}

func (r *TaskRepo) RecordOutcome(ctx context.Context, u OutcomeUpdate) error {
	if u.TaskID == "" {
		return errors.New("task_id 不能为空")
	}
	var snapshot []byte
	if len(u.Snapshot) > 0 {
		snapshot = u.Snapshot
	}
	_, err := r.pool.Exec(ctx, `
insert into browser_task(task_id, status, outcome, output, error, snapshot, finished_at)
values ($1, $2, $3, $4, $5, $6, case when $7 then now() else null end)
on conflict (task_id) do update
set status = case when excluded.status = '' then browser_task.status else excluded.status end,
    outcome = excluded.outcome,
    output = excluded.output,
    error = excluded.error,
    snapshot = coalesce(excluded.snapshot, browser_task.snapshot),
    finished_at = coalesce(excluded.finished_at, browser_task.finished_at),
    updated_at = now()
`, u.TaskID, u.Status, u.Outcome, u.Output, u.Error, snapshot, u.Terminal)
	return err
}

func (r *TaskRepo) GetTask(ctx context.Context, taskID string) (*TaskRecord, error) {
	row := r.pool.QueryRow(ctx, `select `+taskColumns+` from browser_task where task_id=$1`, taskID)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepo) ListTasks(ctx context.Context, f ListTasksFilter) ([]TaskRecord, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
select `+taskColumns+`
from browser_task
where ($1='' or status=$1)
  and ($2='' or outcome=$2)
order by created_at desc
limit $3 offset $4
`, f.Status, f.Outcome, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TaskRecord{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TaskRepo) CountTasks(ctx context.Context, f ListTasksFilter) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
select count(*)
from browser_task
where ($1='' or status=$1)
  and ($2='' or outcome=$2)
`, f.Status, f.Outcome).Scan(&count)
	return count, err
}

func scanTask(row pgx.Row) (*TaskRecord, error) {
	var t TaskRecord
	var snapshot []byte
	if err := row.Scan(&t.TaskID, &t.Instructions, &t.Status, &t.Outcome, &t.Output, &t.Error, &snapshot, &t.CreatedAt, &t.UpdatedAt, &t.FinishedAt); err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		t.Snapshot = snapshot
	}
	return &t, nil
}
