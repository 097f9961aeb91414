package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"freelance/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping verifies the database connection is still usable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// newID returns an opaque 24-character hex identifier.
func newID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read random id: %v", err))
	}
	return hex.EncodeToString(b)
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeTags(s string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeNullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(t), Valid: true}
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeNullTime(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	return decodeTime(ns.String)
}

// Clients

func (r *SQLiteRepository) CreateClient(ctx context.Context, c core.Client) (core.Client, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, email, tags, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, encodeTags(c.Tags), c.Source, encodeTime(c.CreatedAt))
	if err != nil {
		return core.Client{}, fmt.Errorf("insert client: %w", err)
	}

	slog.InfoContext(ctx, "Client saved", "id", c.ID, "name", c.Name)
	return c, nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, id string) (core.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, tags, source, created_at FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, tags, source, created_at FROM clients ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []core.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c core.Client) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, email = ?, tags = ?, source = ? WHERE id = ?`,
		c.Name, c.Email, encodeTags(c.Tags), c.Source, c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteClient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return requireRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (core.Client, error) {
	var c core.Client
	var tags, createdAt string
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &tags, &c.Source, &createdAt); err != nil {
		return core.Client{}, err
	}
	c.Tags = decodeTags(tags)
	c.CreatedAt = decodeTime(createdAt)
	return c, nil
}

// Invoices

func (r *SQLiteRepository) CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	if inv.ID == "" {
		inv.ID = newID()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (id, client_id, amount_cents, due_date, status, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ClientID, inv.Amount.Cents, encodeNullTime(inv.DueDate),
		string(inv.Status), inv.Description, encodeTime(inv.CreatedAt))
	if err != nil {
		return core.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}

	slog.InfoContext(ctx, "Invoice saved",
		"id", inv.ID, "client", inv.ClientID, "amount_cents", inv.Amount.Cents, "status", inv.Status)
	return inv, nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id string) (core.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, amount_cents, due_date, status, description, created_at
		 FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, amount_cents, due_date, status, description, created_at
		 FROM invoices ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateInvoice(ctx context.Context, inv core.Invoice) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET client_id = ?, amount_cents = ?, due_date = ?, status = ?, description = ?
		 WHERE id = ?`,
		inv.ClientID, inv.Amount.Cents, encodeNullTime(inv.DueDate),
		string(inv.Status), inv.Description, inv.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireRow(res)
}

func scanInvoice(s scanner) (core.Invoice, error) {
	var inv core.Invoice
	var dueDate sql.NullString
	var status, createdAt string
	if err := s.Scan(&inv.ID, &inv.ClientID, &inv.Amount.Cents, &dueDate, &status, &inv.Description, &createdAt); err != nil {
		return core.Invoice{}, err
	}
	inv.DueDate = decodeNullTime(dueDate)
	inv.Status = core.InvoiceStatus(status)
	inv.CreatedAt = decodeTime(createdAt)
	return inv, nil
}

// Meetings

func (r *SQLiteRepository) CreateMeeting(ctx context.Context, m core.Meeting) (core.Meeting, error) {
	if m.ID == "" {
		m.ID = newID()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO meetings (id, client_id, date, notes, recurring, recurring_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ClientID, encodeTime(m.Date), m.Notes, boolToInt(m.Recurring), string(m.RecurringType))
	if err != nil {
		return core.Meeting{}, fmt.Errorf("insert meeting: %w", err)
	}

	slog.InfoContext(ctx, "Meeting saved", "id", m.ID, "client", m.ClientID, "date", m.Date)
	return m, nil
}

func (r *SQLiteRepository) GetMeeting(ctx context.Context, id string) (core.Meeting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, date, notes, recurring, recurring_type FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Meeting{}, ErrNotFound
	}
	if err != nil {
		return core.Meeting{}, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListMeetings(ctx context.Context) ([]core.Meeting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, date, notes, recurring, recurring_type
		 FROM meetings ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var out []core.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateMeeting(ctx context.Context, m core.Meeting) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meetings SET client_id = ?, date = ?, notes = ?, recurring = ?, recurring_type = ?
		 WHERE id = ?`,
		m.ClientID, encodeTime(m.Date), m.Notes, boolToInt(m.Recurring), string(m.RecurringType), m.ID)
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteMeeting(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	return requireRow(res)
}

func scanMeeting(s scanner) (core.Meeting, error) {
	var m core.Meeting
	var date, recurringType string
	var recurring int
	if err := s.Scan(&m.ID, &m.ClientID, &date, &m.Notes, &recurring, &recurringType); err != nil {
		return core.Meeting{}, err
	}
	m.Date = decodeTime(date)
	m.Recurring = recurring != 0
	m.RecurringType = core.RecurringType(recurringType)
	return m, nil
}

// Projects

func (r *SQLiteRepository) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.StartDate.IsZero() {
		p.StartDate = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, client_id, name, platform, status, progress, budget_cents,
		   amount_paid_cents, payment_status, start_date, deadline, completed_date, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ClientID, p.Name, p.Platform, string(p.Status), p.Progress, p.Budget.Cents,
		p.AmountPaid.Cents, string(p.PaymentStatus), encodeNullTime(p.StartDate),
		encodeNullTime(p.Deadline), encodeNullTime(p.CompletedDate), encodeTags(p.Tags))
	if err != nil {
		return core.Project{}, fmt.Errorf("insert project: %w", err)
	}

	slog.InfoContext(ctx, "Project saved",
		"id", p.ID, "client", p.ClientID, "name", p.Name, "status", p.Status)
	return p, nil
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (core.Project, error) {
	row := r.db.QueryRowContext(ctx, projectSelect+` WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, ErrNotFound
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, projectSelect+` ORDER BY start_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateProject(ctx context.Context, p core.Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET client_id = ?, name = ?, platform = ?, status = ?, progress = ?,
		   budget_cents = ?, amount_paid_cents = ?, payment_status = ?, start_date = ?,
		   deadline = ?, completed_date = ?, tags = ?
		 WHERE id = ?`,
		p.ClientID, p.Name, p.Platform, string(p.Status), p.Progress, p.Budget.Cents,
		p.AmountPaid.Cents, string(p.PaymentStatus), encodeNullTime(p.StartDate),
		encodeNullTime(p.Deadline), encodeNullTime(p.CompletedDate), encodeTags(p.Tags), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res)
}

// UpdateProjectStanding rewrites only the status/progress pair; board
// moves must not disturb the rest of the record.
func (r *SQLiteRepository) UpdateProjectStanding(ctx context.Context, id string, status core.ProjectStatus, progress int) error {
	var completed sql.NullString
	if status == core.ProjectCompleted {
		completed = encodeNullTime(time.Now().UTC())
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = ?, progress = ?,
		   completed_date = CASE WHEN ? != '' THEN ? ELSE completed_date END
		 WHERE id = ?`,
		string(status), progress, completed.String, completed, id)
	if err != nil {
		return fmt.Errorf("update project standing: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res)
}

const projectSelect = `SELECT id, client_id, name, platform, status, progress, budget_cents,
  amount_paid_cents, payment_status, start_date, deadline, completed_date, tags FROM projects`

func scanProject(s scanner) (core.Project, error) {
	var p core.Project
	var status, paymentStatus, tags string
	var startDate, deadline, completedDate sql.NullString
	if err := s.Scan(&p.ID, &p.ClientID, &p.Name, &p.Platform, &status, &p.Progress,
		&p.Budget.Cents, &p.AmountPaid.Cents, &paymentStatus,
		&startDate, &deadline, &completedDate, &tags); err != nil {
		return core.Project{}, err
	}
	p.Status = core.ProjectStatus(status)
	p.PaymentStatus = core.PaymentStatus(paymentStatus)
	p.StartDate = decodeNullTime(startDate)
	p.Deadline = decodeNullTime(deadline)
	p.CompletedDate = decodeNullTime(completedDate)
	p.Tags = decodeTags(tags)
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// requireRow converts a zero-row update or delete into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
