package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ddportal/internal/models"
)

// ErrNotFound is returned by a Persister that holds no live credential for a
// session id.
var ErrNotFound = errors.New("session: no stored credential")

// Persister keeps sealed credentials keyed by session id.
type Persister interface {
	Save(ctx context.Context, id string, sealed []byte, expiresAt time.Time) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by persisters that need expired rows removed.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) error
}

// DBPersister stores credentials in the portal_sessions table.
type DBPersister struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBPersister(db *gorm.DB) *DBPersister {
	return &DBPersister{db: db, now: time.Now}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.PortalSession{})
}

func (p *DBPersister) Save(ctx context.Context, id string, sealed []byte, expiresAt time.Time) error {
	row := models.PortalSession{ID: id, Credential: sealed, ExpiresAt: expiresAt.UTC()}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"credential", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

func (p *DBPersister) Load(ctx context.Context, id string) ([]byte, error) {
	var row models.PortalSession
	err := p.db.WithContext(ctx).Where("id = ? AND expires_at > ?", id, p.now().UTC()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Credential, nil
}

func (p *DBPersister) Delete(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Delete(&models.PortalSession{}, "id = ?", id).Error
}

func (p *DBPersister) PurgeExpired(ctx context.Context, now time.Time) error {
	return p.db.WithContext(ctx).Delete(&models.PortalSession{}, "expires_at <= ?", now.UTC()).Error
}

type memoryEntry struct {
	sealed    []byte
	expiresAt time.Time
}

// MemoryPersister keeps credentials in process memory. Sessions do not
// survive a restart.
type MemoryPersister struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{entries: map[string]memoryEntry{}}
}

func (p *MemoryPersister) Save(_ context.Context, id string, sealed []byte, expiresAt time.Time) error {
	p.mu.Lock()
	p.entries[id] = memoryEntry{sealed: sealed, expiresAt: expiresAt}
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Load(_ context.Context, id string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok || !time.Now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return e.sealed, nil
}

func (p *MemoryPersister) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	delete(p.entries, id)
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) PurgeExpired(_ context.Context, now time.Time) error {
	p.mu.Lock()
	for id, e := range p.entries {
		if !now.Before(e.expiresAt) {
			delete(p.entries, id)
		}
	}
	p.mu.Unlock()
	return nil
}
