// Package memory provides an in-memory Repository used by tests and local
// development. WithTransaction serializes callers behind a single mutex and
// rolls back via snapshot on error, which gives the same atomic
// check-then-write guarantee the postgres implementation gets from database
// transactions.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
)

type tables struct {
	users   map[uint]*models.User
	books   map[uint]*models.Book
	records map[uint]*models.BorrowingRecord

	nextUserID   uint
	nextBookID   uint
	nextRecordID uint
}

func newTables() *tables {
	return &tables{
		users:        make(map[uint]*models.User),
		books:        make(map[uint]*models.Book),
		records:      make(map[uint]*models.BorrowingRecord),
		nextUserID:   1,
		nextBookID:   1,
		nextRecordID: 1,
	}
}

func (t *tables) snapshot() *tables {
	snap := &tables{
		users:        make(map[uint]*models.User, len(t.users)),
		books:        make(map[uint]*models.Book, len(t.books)),
		records:      make(map[uint]*models.BorrowingRecord, len(t.records)),
		nextUserID:   t.nextUserID,
		nextBookID:   t.nextBookID,
		nextRecordID: t.nextRecordID,
	}
	for id, u := range t.users {
		cp := *u
		snap.users[id] = &cp
	}
	for id, b := range t.books {
		cp := *b
		snap.books[id] = &cp
	}
	for id, r := range t.records {
		cp := *r
		snap.records[id] = &cp
	}
	return snap
}

// Repository is the in-memory implementation of repositories.Repository.
type Repository struct {
	mu sync.Mutex
	t  *tables

	// inTx marks transaction views; their operations run under the lock
	// already held by WithTransaction.
	inTx bool
}

func NewRepository() *Repository {
	return &Repository{t: newTables()}
}

func (r *Repository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *Repository) Users() repositories.UserRepository { return &userTable{repo: r} }

func (r *Repository) Books() repositories.BookRepository { return &bookTable{repo: r} }

func (r *Repository) Borrowings() repositories.BorrowingRepository { return &recordTable{repo: r} }

// WithTransaction runs fn under the global critical section and restores the
// pre-transaction state if fn fails.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.inTx {
		// Nested transaction joins the outer one.
		return fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.t.snapshot()
	txView := &Repository{t: r.t, inTx: true}

	if err := fn(txView); err != nil {
		r.t = snap
		return err
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error { return nil }

func (r *Repository) Close() error { return nil }

// ===== USERS =====

type userTable struct {
	repo *Repository
}

func (t *userTable) Create(ctx context.Context, user *models.User) error {
	unlock := t.repo.lock()
	defer unlock()

	user.ID = t.repo.t.nextUserID
	t.repo.t.nextUserID++
	cp := *user
	t.repo.t.users[user.ID] = &cp
	return nil
}

func (t *userTable) Update(ctx context.Context, user *models.User) error {
	unlock := t.repo.lock()
	defer unlock()

	if _, ok := t.repo.t.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *user
	t.repo.t.users[user.ID] = &cp
	return nil
}

func (t *userTable) GetByID(ctx context.Context, id uint) (*models.User, error) {
	unlock := t.repo.lock()
	defer unlock()

	u, ok := t.repo.t.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (t *userTable) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	unlock := t.repo.lock()
	defer unlock()

	for _, u := range t.repo.t.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *userTable) GetByToken(ctx context.Context, token string) (*models.User, error) {
	unlock := t.repo.lock()
	defer unlock()

	if token == "" {
		return nil, repositories.ErrNotFound
	}
	for _, u := range t.repo.t.users {
		if u.Token == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *userTable) List(ctx context.Context) ([]*models.User, error) {
	unlock := t.repo.lock()
	defer unlock()

	users := make([]*models.User, 0, len(t.repo.t.users))
	for id := uint(1); id < t.repo.t.nextUserID; id++ {
		if u, ok := t.repo.t.users[id]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

// ===== BOOKS =====

type bookTable struct {
	repo *Repository
}

func (t *bookTable) Create(ctx context.Context, book *models.Book) error {
	unlock := t.repo.lock()
	defer unlock()

	book.ID = t.repo.t.nextBookID
	t.repo.t.nextBookID++
	cp := *book
	t.repo.t.books[book.ID] = &cp
	return nil
}

func (t *bookTable) Update(ctx context.Context, book *models.Book) error {
	unlock := t.repo.lock()
	defer unlock()

	if _, ok := t.repo.t.books[book.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *book
	t.repo.t.books[book.ID] = &cp
	return nil
}

func (t *bookTable) Delete(ctx context.Context, id uint) error {
	unlock := t.repo.lock()
	defer unlock()

	if _, ok := t.repo.t.books[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(t.repo.t.books, id)
	return nil
}

func (t *bookTable) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	unlock := t.repo.lock()
	defer unlock()

	b, ok := t.repo.t.books[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (t *bookTable) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	unlock := t.repo.lock()
	defer unlock()

	for _, b := range t.repo.t.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *bookTable) List(ctx context.Context, filters repositories.BookFilters) ([]*models.Book, error) {
	unlock := t.repo.lock()
	defer unlock()

	books := make([]*models.Book, 0, len(t.repo.t.books))
	for id := uint(1); id < t.repo.t.nextBookID; id++ {
		b, ok := t.repo.t.books[id]
		if !ok || !matchBook(b, filters) {
			continue
		}
		cp := *b
		books = append(books, &cp)
	}
	return books, nil
}

func matchBook(b *models.Book, filters repositories.BookFilters) bool {
	if filters.Title != "" && !containsFold(b.Title, filters.Title) {
		return false
	}
	if filters.Author != "" && !containsFold(b.Author, filters.Author) {
		return false
	}
	if filters.ISBN != "" && b.ISBN != filters.ISBN {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ===== BORROWING RECORDS =====

type recordTable struct {
	repo *Repository
}

func (t *recordTable) Create(ctx context.Context, record *models.BorrowingRecord) error {
	if !models.ValidRecordStatus(record.Status) {
		return repositories.ErrInvalidStatus
	}

	unlock := t.repo.lock()
	defer unlock()

	record.ID = t.repo.t.nextRecordID
	t.repo.t.nextRecordID++
	cp := *record
	t.repo.t.records[record.ID] = &cp
	return nil
}

func (t *recordTable) Update(ctx context.Context, record *models.BorrowingRecord) error {
	if !models.ValidRecordStatus(record.Status) {
		return repositories.ErrInvalidStatus
	}

	unlock := t.repo.lock()
	defer unlock()

	if _, ok := t.repo.t.records[record.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *record
	t.repo.t.records[record.ID] = &cp
	return nil
}

func (t *recordTable) GetByID(ctx context.Context, id uint) (*models.BorrowingRecord, error) {
	unlock := t.repo.lock()
	defer unlock()

	rec, ok := t.repo.t.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (t *recordTable) GetActiveByStudentAndBook(ctx context.Context, studentID, bookID uint) (*models.BorrowingRecord, error) {
	unlock := t.repo.lock()
	defer unlock()

	for _, rec := range t.repo.t.records {
		if rec.StudentID == studentID && rec.BookID == bookID && rec.IsActive() {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *recordTable) CountBorrowedByStudent(ctx context.Context, studentID uint) (int64, error) {
	unlock := t.repo.lock()
	defer unlock()

	var count int64
	for _, rec := range t.repo.t.records {
		if rec.StudentID == studentID && rec.Status == models.RecordBorrowed {
			count++
		}
	}
	return count, nil
}

func (t *recordTable) HasActiveByBook(ctx context.Context, bookID uint) (bool, error) {
	unlock := t.repo.lock()
	defer unlock()

	for _, rec := range t.repo.t.records {
		if rec.BookID == bookID && rec.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (t *recordTable) List(ctx context.Context, filters repositories.RecordFilters) ([]*models.BorrowingRecord, error) {
	unlock := t.repo.lock()
	defer unlock()

	records := make([]*models.BorrowingRecord, 0, len(t.repo.t.records))
	for id := uint(1); id < t.repo.t.nextRecordID; id++ {
		rec, ok := t.repo.t.records[id]
		if !ok || !matchRecord(rec, filters) {
			continue
		}
		cp := *rec
		records = append(records, &cp)
	}
	return records, nil
}

func matchRecord(rec *models.BorrowingRecord, filters repositories.RecordFilters) bool {
	if filters.StudentID != nil && rec.StudentID != *filters.StudentID {
		return false
	}
	if filters.BookID != nil && rec.BookID != *filters.BookID {
		return false
	}
	if filters.Status != nil && rec.Status != *filters.Status {
		return false
	}
	if filters.ActiveOnly && !rec.IsActive() {
		return false
	}
	return true
}
