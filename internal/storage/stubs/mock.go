// Package stubs provides an in-memory Repository for tests and front-end
// development, so service logic can run without touching the filesystem.
package stubs

import (
	"sync"

	"booklog/internal/models"
)

// MockRepository is an in-memory implementation of storage.Repository.
type MockRepository struct {
	mu          sync.RWMutex
	books       []models.Book
	impressions []models.Impression
	history     []models.StatusHistory

	// FailSaves makes every Save return this error, for exercising
	// persistence failure paths.
	FailSaves error
}

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// LoadBooks returns a copy of the stored book collection.
func (m *MockRepository) LoadBooks() ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Book{}, m.books...), nil
}

// SaveBooks replaces the stored book collection.
func (m *MockRepository) SaveBooks(books []models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.books = append([]models.Book{}, books...)
	return nil
}

// LoadImpressions returns a copy of the stored impressions index.
func (m *MockRepository) LoadImpressions() ([]models.Impression, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Impression{}, m.impressions...), nil
}

// SaveImpressions replaces the stored impressions index.
func (m *MockRepository) SaveImpressions(impressions []models.Impression) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.impressions = append([]models.Impression{}, impressions...)
	return nil
}

// LoadStatusHistory returns a copy of the stored history.
func (m *MockRepository) LoadStatusHistory() ([]models.StatusHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.StatusHistory{}, m.history...), nil
}

// SaveStatusHistory replaces the stored history.
func (m *MockRepository) SaveStatusHistory(history []models.StatusHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.history = append([]models.StatusHistory{}, history...)
	return nil
}
