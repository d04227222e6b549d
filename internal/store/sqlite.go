package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/vandelli/summit/internal/logger"
	"github.com/vandelli/summit/internal/models"
)

// Store provides data access over an embedded SQLite database and publishes
// a change-feed event for every successful mutation.
type Store struct {
	db   *sql.DB
	log  logger.Logger
	feed *feed
}

// New creates a new Store and runs migrations.
func New(dbPath string, log logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, log: log, feed: newFeed(log)}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing database handle. Used by tests that inject a
// mocked connection; no migrations are run.
func NewWithDB(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log, feed: newFeed(log)}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Subscribe registers a change-feed subscriber.
func (s *Store) Subscribe() <-chan Event {
	return s.feed.Subscribe()
}

// Unsubscribe removes a change-feed subscriber.
func (s *Store) Unsubscribe(ch <-chan Event) {
	s.feed.Unsubscribe(ch)
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS attendees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE COLLATE NOCASE,
			phone TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			ticket_numbers TEXT NOT NULL DEFAULT '[]',
			checked_in BOOLEAN NOT NULL DEFAULT 0,
			registration_date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			visited_stands TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS sponsors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			logo_base64 TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS global_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			app_state TEXT NOT NULL DEFAULT 'NORMAL',
			lottery_active BOOLEAN NOT NULL DEFAULT 0,
			lottery_draw INTEGER,
			lottery_winner INTEGER,
			lottery_is_spinning BOOLEAN NOT NULL DEFAULT 0,
			lottery_results TEXT NOT NULL DEFAULT '{}',
			admin_password TEXT NOT NULL,
			event_image TEXT,
			broadcast_message TEXT,
			broadcast_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendees_email ON attendees(email)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// classify maps driver errors onto store sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.Code == sqlite3.ErrConstraint {
		return ErrConflict
	}
	return err
}

// ==================== Attendee Methods ====================

const attendeeColumns = `id, name, email, phone, company, ticket_numbers, checked_in, registration_date, status, visited_stands`

func scanAttendee(row interface{ Scan(...interface{}) error }) (*models.Attendee, error) {
	var (
		a         models.Attendee
		tickets   string
		regDate   string
		visited   string
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Company, &tickets,
		&a.CheckedIn, &regDate, &a.Status, &visited)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tickets), &a.TicketNumbers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(visited), &a.VisitedStands); err != nil {
		return nil, err
	}
	if a.RegistrationDate, err = time.Parse(time.RFC3339, regDate); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAttendees returns all attendees ordered by registration date.
func (s *Store) ListAttendees(ctx context.Context) ([]models.Attendee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attendeeColumns+` FROM attendees ORDER BY registration_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []models.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, *a)
	}
	return attendees, rows.Err()
}

// GetAttendee retrieves an attendee by id.
func (s *Store) GetAttendee(ctx context.Context, id string) (*models.Attendee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE id = ?`, id)
	a, err := scanAttendee(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// CreateAttendee inserts a new attendee, assigning an id when none is set,
// and returns the stored record. A duplicate email yields ErrConflict.
func (s *Store) CreateAttendee(ctx context.Context, a models.Attendee) (*models.Attendee, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.TicketNumbers == nil {
		a.TicketNumbers = []int{}
	}
	if a.VisitedStands == nil {
		a.VisitedStands = []string{}
	}
	tickets, _ := json.Marshal(a.TicketNumbers)
	visited, _ := json.Marshal(a.VisitedStands)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendees (id, name, email, phone, company, ticket_numbers, checked_in, registration_date, status, visited_stands)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.Phone, a.Company, string(tickets),
		a.CheckedIn, a.RegistrationDate.UTC().Format(time.RFC3339), a.Status, string(visited))
	if err != nil {
		return nil, classify(err)
	}

	created := a.Clone()
	s.feed.publish(Event{Type: EventInsert, Table: TableAttendees, ID: a.ID, Attendee: &created})
	return &a, nil
}

// SetStatus updates an attendee's approval status. ErrNotFound when the id
// does not exist.
func (s *Store) SetStatus(ctx context.Context, id string, status models.AttendeeStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE attendees SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.publishAttendeeUpdate(ctx, id)
	return nil
}

// CheckInAttendee marks an attendee checked in AND approved in one write.
// Check-in implies approval even when the attendee was still pending.
func (s *Store) CheckInAttendee(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE attendees SET checked_in = 1, status = ? WHERE id = ?`,
		models.StatusApproved, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.publishAttendeeUpdate(ctx, id)
	return nil
}

// AppendVisitedStand adds a stand to the attendee's visited set and returns
// the updated record. The update is a read-union-write inside one
// transaction so a concurrent visit from another device can never erase a
// previously recorded stand. Adding an already-present stand is a no-op.
func (s *Store) AppendVisitedStand(ctx context.Context, id, standID string) (*models.Attendee, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE id = ?`, id)
	a, err := scanAttendee(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if a.HasVisited(standID) {
		return a, tx.Commit()
	}

	a.VisitedStands = append(a.VisitedStands, standID)
	visited, _ := json.Marshal(a.VisitedStands)
	if _, err := tx.ExecContext(ctx,
		`UPDATE attendees SET visited_stands = ? WHERE id = ?`, string(visited), id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	updated := a.Clone()
	s.feed.publish(Event{Type: EventUpdate, Table: TableAttendees, ID: id, Attendee: &updated})
	return a, nil
}

// DeleteAttendee removes an attendee. Deleting a missing id is a no-op.
func (s *Store) DeleteAttendee(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM attendees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		s.feed.publish(Event{Type: EventDelete, Table: TableAttendees, ID: id})
	}
	return nil
}

// publishAttendeeUpdate re-reads a record and emits an update event carrying
// the full row, mirroring what a remote change feed delivers.
func (s *Store) publishAttendeeUpdate(ctx context.Context, id string) {
	a, err := s.GetAttendee(ctx, id)
	if err != nil {
		s.log.Warn("could not load attendee for change feed", "id", id, "error", err)
		return
	}
	s.feed.publish(Event{Type: EventUpdate, Table: TableAttendees, ID: id, Attendee: a})
}

// ==================== Sponsor Methods ====================

// ListSponsors returns all sponsors.
func (s *Store) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, logo_base64 FROM sponsors ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sponsors []models.Sponsor
	for rows.Next() {
		var sp models.Sponsor
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.LogoBase64); err != nil {
			return nil, err
		}
		sponsors = append(sponsors, sp)
	}
	return sponsors, rows.Err()
}

// CreateSponsor inserts a sponsor row and returns it.
func (s *Store) CreateSponsor(ctx context.Context, name, logoBase64 string) (*models.Sponsor, error) {
	sp := models.Sponsor{ID: uuid.NewString(), Name: name, LogoBase64: logoBase64}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sponsors (id, name, logo_base64) VALUES (?, ?, ?)`,
		sp.ID, sp.Name, sp.LogoBase64)
	if err != nil {
		return nil, classify(err)
	}
	published := sp
	s.feed.publish(Event{Type: EventInsert, Table: TableSponsors, ID: sp.ID, Sponsor: &published})
	return &sp, nil
}

// DeleteSponsor removes a sponsor. Deleting a missing id is a no-op.
func (s *Store) DeleteSponsor(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sponsors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		s.feed.publish(Event{Type: EventDelete, Table: TableSponsors, ID: id})
	}
	return nil
}

// ==================== Global State Methods ====================

// GetGlobalState returns the singleton global-state row.
func (s *Store) GetGlobalState(ctx context.Context) (*models.GlobalState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT app_state, lottery_active, lottery_draw, lottery_winner,
		       lottery_is_spinning, lottery_results, admin_password,
		       event_image, broadcast_message, broadcast_id
		FROM global_state WHERE id = 1`)

	var (
		g          models.GlobalState
		draw       sql.NullInt64
		winner     sql.NullInt64
		results    string
		eventImage sql.NullString
		bcastText  sql.NullString
		bcastID    sql.NullString
	)
	err := row.Scan(&g.AppState, &g.Lottery.Active, &draw, &winner,
		&g.Lottery.IsSpinning, &results, &g.AdminPassword,
		&eventImage, &bcastText, &bcastID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	g.Lottery.CurrentDraw = int(draw.Int64)
	g.Lottery.Winner = int(winner.Int64)
	if err := json.Unmarshal([]byte(results), &g.Lottery.Results); err != nil {
		return nil, err
	}
	g.EventImage = eventImage.String
	if bcastID.Valid && bcastText.Valid {
		g.Broadcast = &models.Broadcast{ID: bcastID.String, Text: bcastText.String}
	}
	return &g, nil
}

// EnsureGlobalState creates the singleton row with the given defaults if it
// does not exist yet. One-time self-healing initialization.
func (s *Store) EnsureGlobalState(ctx context.Context, defaults models.GlobalState) error {
	results, _ := json.Marshal(defaults.Lottery.Results)
	if defaults.Lottery.Results == nil {
		results = []byte("{}")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO global_state (id, app_state, lottery_active, lottery_is_spinning, lottery_results, admin_password)
		VALUES (1, ?, ?, ?, ?, ?)`,
		defaults.AppState, defaults.Lottery.Active, defaults.Lottery.IsSpinning,
		string(results), defaults.AdminPassword)
	return err
}

// UpdateLottery merges the lottery fields into the global-state row.
func (s *Store) UpdateLottery(ctx context.Context, l models.LotteryState) error {
	results, _ := json.Marshal(l.Results)
	if l.Results == nil {
		results = []byte("{}")
	}
	var draw, winner interface{}
	if l.CurrentDraw != 0 {
		draw = l.CurrentDraw
	}
	if l.Winner != 0 {
		winner = l.Winner
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE global_state
		SET lottery_active = ?, lottery_draw = ?, lottery_winner = ?,
		    lottery_is_spinning = ?, lottery_results = ?
		WHERE id = 1`,
		l.Active, draw, winner, l.IsSpinning, string(results))
	if err != nil {
		return err
	}
	s.publishGlobalUpdate(ctx)
	return nil
}

// SetAppState merges the alert mode into the global-state row.
func (s *Store) SetAppState(ctx context.Context, state models.AppState) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE global_state SET app_state = ? WHERE id = 1`, state); err != nil {
		return err
	}
	s.publishGlobalUpdate(ctx)
	return nil
}

// SetAdminPassword merges a new admin credential into the global-state row.
func (s *Store) SetAdminPassword(ctx context.Context, password string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE global_state SET admin_password = ? WHERE id = 1`, password); err != nil {
		return err
	}
	s.publishGlobalUpdate(ctx)
	return nil
}

// SetEventImage merges the event location image into the global-state row.
// An empty string clears the image.
func (s *Store) SetEventImage(ctx context.Context, imageBase64 string) error {
	var image interface{}
	if imageBase64 != "" {
		image = imageBase64
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE global_state SET event_image = ? WHERE id = 1`, image); err != nil {
		return err
	}
	s.publishGlobalUpdate(ctx)
	return nil
}

// SetBroadcast merges the current broadcast message into the global-state row.
func (s *Store) SetBroadcast(ctx context.Context, b models.Broadcast) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE global_state SET broadcast_message = ?, broadcast_id = ? WHERE id = 1`,
		b.Text, b.ID); err != nil {
		return err
	}
	s.publishGlobalUpdate(ctx)
	return nil
}

func (s *Store) publishGlobalUpdate(ctx context.Context) {
	g, err := s.GetGlobalState(ctx)
	if err != nil {
		s.log.Warn("could not load global state for change feed", "error", err)
		return
	}
	s.feed.publish(Event{Type: EventUpdate, Table: TableGlobalState, Global: g})
}
