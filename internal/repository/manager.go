package repository

import (
	"gorm.io/gorm"
)

// RepositoryManager bundles the per-aggregate repositories behind one
// dependency so handlers and services share a single database handle.
type RepositoryManager interface {
	Directory() *DirectoryRepository
	Profiles() *ProfileRepository
	Summaries() *CallSummaryRepository
	Messages() *MessageRepository
	DB() *gorm.DB
}

type gormRepositoryManager struct {
	db        *gorm.DB
	directory *DirectoryRepository
	profiles  *ProfileRepository
	summaries *CallSummaryRepository
	messages  *MessageRepository
}

// NewGormRepositoryManager creates a repository manager on top of an
// existing gorm connection.
func NewGormRepositoryManager(db *gorm.DB) RepositoryManager {
	return &gormRepositoryManager{
		db:        db,
		directory: NewDirectoryRepository(db),
		profiles:  NewProfileRepository(db),
		summaries: NewCallSummaryRepository(db),
		messages:  NewMessageRepository(db),
	}
}

func (m *gormRepositoryManager) Directory() *DirectoryRepository      { return m.directory }
func (m *gormRepositoryManager) Profiles() *ProfileRepository         { return m.profiles }
func (m *gormRepositoryManager) Summaries() *CallSummaryRepository    { return m.summaries }
func (m *gormRepositoryManager) Messages() *MessageRepository         { return m.messages }
func (m *gormRepositoryManager) DB() *gorm.DB                         { return m.db }
