package repository

import "gorm.io/gorm"

// Store groups the catalog repositories sharing one database session
type Store struct {
	Products   *ProductStore
	Categories *CategoryStore
	Companies  *CompanyStore
}

// New creates the catalog repositories on top of db
func New(db *gorm.DB) *Store {
	return &Store{
		Products:   &ProductStore{db: db},
		Categories: &CategoryStore{db: db},
		Companies:  &CompanyStore{db: db},
	}
}
