// Package adaptertest provides in-memory implementations of the adapter interfaces for tests.
package adaptertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// Store keeps bills and transactions in memory. It implements
// adapter.BillRepository directly; TransactionRepo exposes the transaction side.
// Writes can be made to fail per bill with FailWritesFor.
type Store struct {
	mu           sync.Mutex
	bills        map[uuid.UUID]*entity.Bill
	transactions map[uuid.UUID]*entity.Transaction
	failing      map[uuid.UUID]error
	findErr      error

	// StatusUpdates counts successful UpdateStatusIf calls.
	StatusUpdates int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		bills:        make(map[uuid.UUID]*entity.Bill),
		transactions: make(map[uuid.UUID]*entity.Transaction),
		failing:      make(map[uuid.UUID]error),
	}
}

var (
	_ adapter.BillRepository        = (*Store)(nil)
	_ adapter.TransactionRepository = transactionView{}
)

// AddBill stores a copy of the bill.
func (s *Store) AddBill(bill *entity.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[bill.ID] = cloneBill(bill)
}

// AddTransaction stores a copy of the transaction.
func (s *Store) AddTransaction(transaction *entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *transaction
	s.transactions[transaction.ID] = &copied
}

// Bill returns a copy of the stored bill, or nil.
func (s *Store) Bill(id uuid.UUID) *entity.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill, ok := s.bills[id]
	if !ok {
		return nil
	}
	return cloneBill(bill)
}

// Transactions returns copies of every stored transaction of a bill, oldest first.
func (s *Store) Transactions(billID uuid.UUID) []*entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.transactionsOf(billID)
	sort.Slice(result, func(i, j int) bool {
		return result[i].PaidAt.Before(result[j].PaidAt)
	})
	return result
}

// FailWritesFor makes every write touching the bill return err.
func (s *Store) FailWritesFor(billID uuid.UUID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[billID] = err
}

// FailQueries makes every bill query return err.
func (s *Store) FailQueries(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findErr = err
}

// Create implements adapter.BillRepository.
func (s *Store) Create(_ context.Context, bill *entity.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[bill.ID]; err != nil {
		return err
	}
	s.bills[bill.ID] = cloneBill(bill)
	return nil
}

// FindByID implements adapter.BillRepository.
func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*entity.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill, ok := s.bills[id]
	if !ok {
		return nil, domainerror.ErrBillNotFound
	}
	return cloneBill(bill), nil
}

// FindByFilter implements adapter.BillRepository.
func (s *Store) FindByFilter(_ context.Context, filter adapter.BillFilter) ([]*entity.Bill, error) {
	return s.selectBills(func(b *entity.Bill) bool {
		if b.IsArchived && !filter.IncludeArchived {
			return false
		}
		if filter.Status != nil && b.Status != *filter.Status {
			return false
		}
		return filter.Tag == "" || b.HasTag(filter.Tag)
	})
}

// FindActive implements adapter.BillRepository.
func (s *Store) FindActive(_ context.Context, tag string) ([]*entity.Bill, error) {
	return s.selectBills(func(b *entity.Bill) bool {
		return !b.IsArchived && b.Status != entity.BillStatusPaid && (tag == "" || b.HasTag(tag))
	})
}

// FindAutoPayDue implements adapter.BillRepository.
func (s *Store) FindAutoPayDue(_ context.Context, today time.Time) ([]*entity.Bill, error) {
	return s.selectBills(func(b *entity.Bill) bool {
		return b.IsAutoPay && !b.IsArchived && b.Status != entity.BillStatusPaid &&
			billing.CompareDates(b.DueDate, today) <= 0
	})
}

// FindOverdueCandidates implements adapter.BillRepository.
func (s *Store) FindOverdueCandidates(_ context.Context, today time.Time) ([]*entity.Bill, error) {
	return s.selectBills(func(b *entity.Bill) bool {
		return !b.IsArchived && b.Status == entity.BillStatusPending &&
			billing.CompareDates(b.DueDate, today) < 0
	})
}

// UpdateStatusIf implements adapter.BillRepository.
func (s *Store) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, status entity.BillStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[id]; err != nil {
		return false, err
	}
	bill, ok := s.bills[id]
	if !ok || bill.Status != expected {
		return false, nil
	}
	bill.Status = status
	s.StatusUpdates++
	return true, nil
}

// Update implements adapter.BillRepository.
func (s *Store) Update(_ context.Context, bill *entity.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[bill.ID]; err != nil {
		return err
	}
	if _, ok := s.bills[bill.ID]; !ok {
		return domainerror.ErrBillNotFound
	}
	s.bills[bill.ID] = cloneBill(bill)
	return nil
}

// GetTotals implements adapter.TransactionRepository.
func (s *Store) GetTotals(_ context.Context, billID uuid.UUID) (*entity.TransactionTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := &entity.TransactionTotals{}
	for _, txn := range s.transactionsOf(billID) {
		totals.Count++
		totals.Total += txn.Amount
	}
	return totals, nil
}

func (s *Store) findTransaction(id uuid.UUID) (*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[id]
	if !ok {
		return nil, domainerror.ErrTransactionNotFound
	}
	copied := *txn
	return &copied, nil
}

// FindByBillID implements adapter.TransactionRepository.
func (s *Store) FindByBillID(_ context.Context, billID uuid.UUID) ([]*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.transactionsOf(billID)
	sortRecentFirst(result)
	return result, nil
}

// FindByBillIDAndMonth implements adapter.TransactionRepository.
func (s *Store) FindByBillIDAndMonth(_ context.Context, billID uuid.UUID, year int, month time.Month) ([]*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entity.Transaction
	for _, txn := range s.transactionsOf(billID) {
		if txn.PaidAt.Year() == year && txn.PaidAt.Month() == month {
			result = append(result, txn)
		}
	}
	sortRecentFirst(result)
	return result, nil
}

// RecordPayment implements adapter.TransactionRepository.
func (s *Store) RecordPayment(_ context.Context, transaction *entity.Transaction, change *entity.BillChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[transaction.BillID]; err != nil {
		return err
	}
	if err := s.checkChange(transaction.BillID, change); err != nil {
		return err
	}
	copied := *transaction
	s.transactions[transaction.ID] = &copied
	s.applyChange(transaction.BillID, change)
	return nil
}

// UpdateWithState implements adapter.TransactionRepository.
func (s *Store) UpdateWithState(_ context.Context, transaction *entity.Transaction, change *entity.BillChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[transaction.BillID]; err != nil {
		return err
	}
	if _, ok := s.transactions[transaction.ID]; !ok {
		return domainerror.ErrTransactionNotFound
	}
	if err := s.checkChange(transaction.BillID, change); err != nil {
		return err
	}
	copied := *transaction
	s.transactions[transaction.ID] = &copied
	s.applyChange(transaction.BillID, change)
	return nil
}

// DeleteWithState implements adapter.TransactionRepository.
func (s *Store) DeleteWithState(_ context.Context, transaction *entity.Transaction, change *entity.BillChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failing[transaction.BillID]; err != nil {
		return err
	}
	if _, ok := s.transactions[transaction.ID]; !ok {
		return domainerror.ErrTransactionNotFound
	}
	if err := s.checkChange(transaction.BillID, change); err != nil {
		return err
	}
	delete(s.transactions, transaction.ID)
	s.applyChange(transaction.BillID, change)
	return nil
}

// TransactionRepo returns the store viewed as an adapter.TransactionRepository.
func (s *Store) TransactionRepo() adapter.TransactionRepository {
	return transactionView{s}
}

type transactionView struct {
	*Store
}

func (v transactionView) FindByID(_ context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return v.findTransaction(id)
}

func (s *Store) selectBills(match func(*entity.Bill) bool) ([]*entity.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var result []*entity.Bill
	for _, bill := range s.bills {
		if match(bill) {
			result = append(result, cloneBill(bill))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *Store) transactionsOf(billID uuid.UUID) []*entity.Transaction {
	var result []*entity.Transaction
	for _, txn := range s.transactions {
		if txn.BillID == billID {
			copied := *txn
			result = append(result, &copied)
		}
	}
	return result
}

// checkChange mirrors the conditional bill write of the database repository.
func (s *Store) checkChange(billID uuid.UUID, change *entity.BillChange) error {
	if change == nil {
		return nil
	}
	bill, ok := s.bills[billID]
	if !ok {
		return domainerror.ErrBillNotFound
	}
	current := bill.State()
	if billing.CompareDates(current.DueDate, change.From.DueDate) != 0 ||
		current.AmountDue != change.From.AmountDue ||
		current.Status != change.From.Status {
		return domainerror.ErrBillStateChanged
	}
	return nil
}

func (s *Store) applyChange(billID uuid.UUID, change *entity.BillChange) {
	if change == nil {
		return
	}
	if bill, ok := s.bills[billID]; ok {
		bill.Apply(change.To)
	}
}

func sortRecentFirst(transactions []*entity.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].PaidAt.After(transactions[j].PaidAt)
	})
}

func cloneBill(bill *entity.Bill) *entity.Bill {
	copied := *bill
	copied.Tags = append([]string(nil), bill.Tags...)
	if bill.EndDate != nil {
		end := *bill.EndDate
		copied.EndDate = &end
	}
	return &copied
}
