package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/atkinsj/dumpbin/internal/models"
	"github.com/atkinsj/dumpbin/internal/publicid"
	"github.com/rs/zerolog/log"
)

// maxRangeLimit caps the page size of range queries.
const maxRangeLimit = 20

// DumpServiceProvider defines the interface for dump services.
type DumpServiceProvider interface {
	CreateDump(dump models.Dump) (models.Dump, error)
	ViewDump(publicID string) (models.Dump, error)
	UpdateDump(dump models.Dump) (models.Dump, error)
	DeleteDump(publicID, owner string) error
	GetRecentDumps(limit int) ([]models.Dump, error)
	GetRecentDumpsByUser(username string, limit int) ([]models.Dump, error)
	GetUserDumps(username string, includeAll bool) ([]models.Dump, error)
	GetPublicRange(page, limit int, dumpType string) ([]models.Dump, error)
	FindExpired(now time.Time) ([]models.Dump, error)
	DeleteDumpByID(id int64) error
}

// DumpService provides business logic for dump management.
type DumpService struct {
	db        *sql.DB
	allocator *publicid.Allocator
	events    EventServiceProvider
}

// NewDumpService creates a new DumpService.
func NewDumpService(db *sql.DB, allocator *publicid.Allocator, events EventServiceProvider) *DumpService {
	return &DumpService{db: db, allocator: allocator, events: events}
}

const dumpColumns = "id, public_id, username, title, contents, exposure, type, views, expiration, created_at"

// CreateDump allocates a public ID and inserts the dump.
//
// The allocator's exists check is advisory; the UNIQUE constraint on
// public_id is the real guarantee, and a conflicting insert triggers a
// fresh allocation.
func (s *DumpService) CreateDump(dump models.Dump) (models.Dump, error) {
	if !dump.Exposure.Valid() {
		dump.Exposure = models.ExposurePublic
	}
	dump.Title = truncateTitle(dump.Title)
	dump.Views = 0
	dump.CreatedAt = time.Now().UTC()
	if dump.Expiration != nil {
		utc := dump.Expiration.UTC()
		dump.Expiration = &utc
	}

	for {
		id, err := s.allocator.Allocate(s.publicIDExists)
		if err != nil {
			return models.Dump{}, err
		}
		dump.PublicID = id

		res, err := s.db.Exec(
			"INSERT INTO dumps (public_id, username, title, contents, exposure, type, views, expiration, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			dump.PublicID, dump.Username, dump.Title, dump.Contents, string(dump.Exposure), dump.Type, dump.Views, dump.Expiration, dump.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				// Lost the race for this ID; draw another.
				log.Warn().Str("public_id", id).Msg("Public ID conflict at insert, reallocating")
				continue
			}
			return models.Dump{}, err
		}

		dump.ID, err = res.LastInsertId()
		if err != nil {
			return models.Dump{}, err
		}
		break
	}

	s.events.CreateEvent("dump.create", "info", fmt.Sprintf("Dump '%s' created.", dump.PublicID), &dump.PublicID)
	return dump, nil
}

// ViewDump retrieves a dump by its public ID and counts the view.
//
// A dump found expired is deleted on the spot and reported as not found.
// View counters are bumped with atomic UPDATEs so concurrent reads never
// lose increments.
func (s *DumpService) ViewDump(publicID string) (models.Dump, error) {
	dump, err := s.getByPublicID(publicID)
	if err != nil {
		return models.Dump{}, err
	}

	if dump.Expired(time.Now().UTC()) {
		if err := s.DeleteDumpByID(dump.ID); err != nil {
			log.Error().Err(err).Str("public_id", publicID).Msg("Failed to delete expired dump on read")
		}
		return models.Dump{}, models.ErrNotFound
	}

	if _, err := s.db.Exec("UPDATE dumps SET views = views + 1 WHERE id = ?", dump.ID); err != nil {
		return models.Dump{}, err
	}
	dump.Views++

	if dump.Username != "" {
		if _, err := s.db.Exec("UPDATE users SET views = views + 1 WHERE username = ?", dump.Username); err != nil {
			log.Error().Err(err).Str("username", dump.Username).Msg("Failed to count owner view")
		}
	}

	return dump, nil
}

// UpdateDump saves changes to an existing dump. The public ID is immutable;
// everything else on the record follows the payload.
func (s *DumpService) UpdateDump(dump models.Dump) (models.Dump, error) {
	existing, err := s.getByPublicID(dump.PublicID)
	if err != nil {
		return models.Dump{}, err
	}
	if !strings.EqualFold(existing.Username, dump.Username) {
		return models.Dump{}, models.ErrForbidden
	}

	if !dump.Exposure.Valid() {
		dump.Exposure = existing.Exposure
	}
	dump.Title = truncateTitle(dump.Title)
	if dump.Expiration != nil {
		utc := dump.Expiration.UTC()
		dump.Expiration = &utc
	}

	_, err = s.db.Exec(
		"UPDATE dumps SET title = ?, contents = ?, exposure = ?, type = ?, expiration = ? WHERE id = ?",
		dump.Title, dump.Contents, string(dump.Exposure), dump.Type, dump.Expiration, existing.ID,
	)
	if err != nil {
		return models.Dump{}, err
	}

	return s.getByPublicID(dump.PublicID)
}

// DeleteDump removes a dump owned by the given user.
func (s *DumpService) DeleteDump(publicID, owner string) error {
	dump, err := s.getByPublicID(publicID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(dump.Username, owner) {
		return models.ErrForbidden
	}

	if err := s.DeleteDumpByID(dump.ID); err != nil {
		return err
	}

	s.events.CreateEvent("dump.delete", "info", fmt.Sprintf("Dump '%s' deleted by owner.", publicID), &publicID)
	return nil
}

// GetRecentDumps returns the newest public dumps.
func (s *DumpService) GetRecentDumps(limit int) ([]models.Dump, error) {
	return s.queryDumps(
		"SELECT "+dumpColumns+" FROM dumps WHERE exposure = ? ORDER BY id DESC LIMIT ?",
		string(models.ExposurePublic), limit,
	)
}

// GetRecentDumpsByUser returns the newest dumps of a user regardless of
// exposure. Callers are expected to have verified the requester owns them.
func (s *DumpService) GetRecentDumpsByUser(username string, limit int) ([]models.Dump, error) {
	return s.queryDumps(
		"SELECT "+dumpColumns+" FROM dumps WHERE username = ? ORDER BY id DESC LIMIT ?",
		username, limit,
	)
}

// GetUserDumps returns up to 100 of a user's dumps; public ones only unless
// includeAll is set.
func (s *DumpService) GetUserDumps(username string, includeAll bool) ([]models.Dump, error) {
	if includeAll {
		return s.queryDumps(
			"SELECT "+dumpColumns+" FROM dumps WHERE username = ? ORDER BY id DESC LIMIT 100",
			username,
		)
	}
	return s.queryDumps(
		"SELECT "+dumpColumns+" FROM dumps WHERE username = ? AND exposure = ? ORDER BY id DESC LIMIT 100",
		username, string(models.ExposurePublic),
	)
}

// GetPublicRange returns a page of public dumps, optionally filtered by
// type. The page size is capped at maxRangeLimit.
func (s *DumpService) GetPublicRange(page, limit int, dumpType string) ([]models.Dump, error) {
	if limit <= 0 || limit > maxRangeLimit {
		limit = maxRangeLimit
	}
	if page < 0 {
		page = 0
	}

	if dumpType != "" {
		return s.queryDumps(
			"SELECT "+dumpColumns+" FROM dumps WHERE exposure = ? AND type = ? ORDER BY id DESC LIMIT ? OFFSET ?",
			string(models.ExposurePublic), dumpType, limit, page*limit,
		)
	}
	return s.queryDumps(
		"SELECT "+dumpColumns+" FROM dumps WHERE exposure = ? ORDER BY id DESC LIMIT ? OFFSET ?",
		string(models.ExposurePublic), limit, page*limit,
	)
}

// FindExpired returns all dumps whose expiration is set and has passed.
// The boundary is inclusive: expiration == now is eligible.
func (s *DumpService) FindExpired(now time.Time) ([]models.Dump, error) {
	return s.queryDumps(
		"SELECT "+dumpColumns+" FROM dumps WHERE expiration IS NOT NULL AND expiration <= ? ORDER BY id",
		now.UTC(),
	)
}

// DeleteDumpByID removes a dump by its internal ID.
func (s *DumpService) DeleteDumpByID(id int64) error {
	_, err := s.db.Exec("DELETE FROM dumps WHERE id = ?", id)
	return err
}

func (s *DumpService) getByPublicID(publicID string) (models.Dump, error) {
	row := s.db.QueryRow("SELECT "+dumpColumns+" FROM dumps WHERE public_id = ?", publicID)
	dump, err := scanDump(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Dump{}, models.ErrNotFound
		}
		return models.Dump{}, err
	}
	return dump, nil
}

// publicIDExists is the allocator's advisory collision check.
func (s *DumpService) publicIDExists(id string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM dumps WHERE public_id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *DumpService) queryDumps(query string, args ...interface{}) ([]models.Dump, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dumps []models.Dump
	for rows.Next() {
		dump, err := scanDump(rows)
		if err != nil {
			return nil, err
		}
		dumps = append(dumps, dump)
	}
	return dumps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDump(row rowScanner) (models.Dump, error) {
	var dump models.Dump
	var exposure string
	var expiration sql.NullTime
	err := row.Scan(&dump.ID, &dump.PublicID, &dump.Username, &dump.Title, &dump.Contents, &exposure, &dump.Type, &dump.Views, &expiration, &dump.CreatedAt)
	if err != nil {
		return models.Dump{}, err
	}
	dump.Exposure = models.Exposure(exposure)
	if expiration.Valid {
		t := expiration.Time
		dump.Expiration = &t
	}
	return dump, nil
}

// truncateTitle clips to MaxTitleLength characters without splitting a rune.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > models.MaxTitleLength {
		return string(runes[:models.MaxTitleLength])
	}
	return title
}
