// Package memory keeps orders, officers and payments in process memory. It
// backs STORAGE=memory for local runs and the service tests. One mutex
// guards everything, so each Update is atomic the way a row lock is.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"fulfillment-be/internal/officer"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/payment"
	"fulfillment-be/internal/user"
	"fulfillment-be/internal/utils"

	"github.com/google/uuid"
)

type webhookEntry struct {
	id          int64
	processed   bool
	attempts    int
	lastFailure string
}

type Store struct {
	mu sync.Mutex

	orders       map[uint]*order.Order
	orderNumbers map[string]uint
	nextOrderID  uint
	nextItemID   uint

	officers map[string]*officer.Officer
	users    map[string]*user.User

	payments      map[string]*payment.Payment
	invoices      map[string]*payment.Invoice
	webhooks      map[string]*webhookEntry
	nextWebhookID int64

	now func() time.Time
}

var (
	_ order.Repository   = (*Store)(nil)
	_ officer.Repository = (*Store)(nil)
	_ payment.Repository = (*Store)(nil)
	_ user.Repository    = userStore{}
)

func NewStore() *Store {
	return &Store{
		orders:       make(map[uint]*order.Order),
		orderNumbers: make(map[string]uint),
		officers:     make(map[string]*officer.Officer),
		users:        make(map[string]*user.User),
		payments:     make(map[string]*payment.Payment),
		invoices:     make(map[string]*payment.Invoice),
		webhooks:     make(map[string]*webhookEntry),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PutOfficer inserts or replaces an officer profile.
func (s *Store) PutOfficer(o officer.Officer) {
	if o.MaxActiveOrders == 0 {
		o.MaxActiveOrders = officer.DefaultMaxActiveOrders
	}
	if o.AvailabilityStatus == "" {
		o.AvailabilityStatus = officer.Available
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o.UpdatedAt = s.now()
	s.officers[o.UserID] = &o
}

// Orders

func (s *Store) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.Number == "" {
		o.Number = utils.GenerateOrderNumber()
	}
	if o.Status == "" {
		o.Status = order.StatusDraft
	}
	if o.AssignmentStatus == "" {
		o.AssignmentStatus = order.AssignmentUnassigned
	}
	now := s.now()
	o.CreatedAt, o.UpdatedAt = now, now

	s.nextOrderID++
	o.ID = s.nextOrderID
	for i := range o.Items {
		s.nextItemID++
		o.Items[i].ID = s.nextItemID
		o.Items[i].OrderID = o.ID
		if o.Items[i].Status == "" {
			o.Items[i].Status = order.ItemPending
		}
	}

	s.orders[o.ID] = o.Clone()
	s.orderNumbers[o.Number] = o.ID
	return nil
}

func (s *Store) GetByNumber(_ context.Context, number string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.orderNumbers[number]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return s.orders[id].Clone(), nil
}

func (s *Store) GetByID(_ context.Context, id uint) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (s *Store) Update(_ context.Context, id uint, fn func(o *order.Order) error) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(id, fn)
}

func (s *Store) updateLocked(id uint, fn func(o *order.Order) error) (*order.Order, error) {
	current, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	s.orders[id] = next
	return next.Clone(), nil
}

func (s *Store) filterOrders(keep func(o *order.Order) bool) []*order.Order {
	var out []*order.Order
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) ListNeedingManualIntervention(_ context.Context) ([]*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterOrders(func(o *order.Order) bool { return o.NeedsManualIntervention }), nil
}

func (s *Store) ListAwaitingAssignment(_ context.Context, limit int) ([]*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.filterOrders(func(o *order.Order) bool {
		return o.Status == order.StatusConfirmed &&
			o.AssignedOfficerID == nil &&
			!o.NeedsManualIntervention &&
			(o.AssignmentStatus == order.AssignmentUnassigned || o.AssignmentStatus == order.AssignmentRejected)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ActiveOrderCounts(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, o := range s.orders {
		if o.CountsTowardWorkload() {
			counts[*o.AssignedOfficerID]++
		}
	}
	return counts, nil
}

// Officers

func (s *Store) Get(_ context.Context, userID string) (*officer.Officer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[userID]
	if !ok {
		return nil, officer.ErrOfficerNotFound
	}
	c := *o
	return &c, nil
}

func (s *Store) listOfficers(keep func(o *officer.Officer) bool) []*officer.Officer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*officer.Officer
	for _, o := range s.officers {
		if keep(o) {
			c := *o
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (s *Store) ListActive(_ context.Context) ([]*officer.Officer, error) {
	return s.listOfficers(func(o *officer.Officer) bool { return o.Active }), nil
}

func (s *Store) ListEligible(_ context.Context, excludeID string) ([]*officer.Officer, error) {
	return s.listOfficers(func(o *officer.Officer) bool {
		return o.Eligible() && o.UserID != excludeID
	}), nil
}

func (s *Store) UpdateAvailability(
	_ context.Context,
	userID string,
	status officer.AvailabilityStatus,
	maxActiveOrders *int,
) (*officer.Officer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[userID]
	if !ok {
		return nil, officer.ErrOfficerNotFound
	}
	o.AvailabilityStatus = status
	if maxActiveOrders != nil {
		o.MaxActiveOrders = *maxActiveOrders
	}
	o.UpdatedAt = s.now()

	c := *o
	return &c, nil
}

// Payments

func (s *Store) RecordConfirmation(_ context.Context, p *payment.Payment, fn func(o *order.Order) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.payments[p.TransactionID]; dup {
		return false, nil
	}

	o, err := s.updateLocked(p.OrderID, fn)
	if err != nil {
		return false, err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = payment.PaymentStatusPaid
	p.CreatedAt = s.now()
	p.OrderNumber = o.Number

	stored := *p
	s.payments[p.TransactionID] = &stored
	return true, nil
}

func (s *Store) GetByTransactionID(_ context.Context, transactionID string) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[transactionID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	c := *p
	return &c, nil
}

func (s *Store) HasCompletedPayment(_ context.Context, orderID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.OrderID == orderID && p.Status == payment.PaymentStatusPaid {
			return true, nil
		}
	}
	return false, nil
}

// PaymentCount returns how many payments were recorded for orderID.
func (s *Store) PaymentCount(orderID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, p := range s.payments {
		if p.OrderID == orderID {
			n++
		}
	}
	return n
}

func (s *Store) SaveInvoice(_ context.Context, _ uint, inv *payment.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *inv
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.invoices[inv.Reference] = &c
	return nil
}

// Invoice returns the stored invoice for reference, or nil.
func (s *Store) Invoice(reference string) *payment.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[reference]
	if !ok {
		return nil
	}
	c := *inv
	return &c
}

func (s *Store) SaveWebhook(
	_ context.Context,
	provider string,
	eventID string,
	_ string,
	_ string,
	_ json.RawMessage,
	_ bool,
) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := provider + "|" + eventID
	if w, ok := s.webhooks[key]; ok {
		w.attempts++
		return w.id, w.processed, nil
	}

	s.nextWebhookID++
	s.webhooks[key] = &webhookEntry{id: s.nextWebhookID, attempts: 1}
	return s.nextWebhookID, false, nil
}

func (s *Store) webhookByID(id int64) *webhookEntry {
	for _, w := range s.webhooks {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (s *Store) MarkWebhookProcessed(_ context.Context, webhookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w := s.webhookByID(webhookID); w != nil {
		w.processed = true
		w.lastFailure = ""
	}
	return nil
}

func (s *Store) MarkWebhookFailed(_ context.Context, webhookID int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w := s.webhookByID(webhookID); w != nil {
		w.lastFailure = reason
	}
	return nil
}

// Users

// Users returns the account view of the store.
func (s *Store) Users() user.Repository {
	return userStore{st: s}
}

type userStore struct {
	st *Store
}

func (us userStore) Create(_ context.Context, u *user.User, maxActiveOrders int) error {
	s := us.st
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.users[u.Email]; dup {
		return user.ErrEmailExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now()
	c := *u
	s.users[u.Email] = &c

	if u.Role == utils.RoleOfficer {
		if maxActiveOrders <= 0 {
			maxActiveOrders = officer.DefaultMaxActiveOrders
		}
		s.officers[u.ID] = &officer.Officer{
			UserID:             u.ID,
			Name:               u.Name,
			Email:              u.Email,
			Active:             u.Active,
			AvailabilityStatus: officer.Available,
			MaxActiveOrders:    maxActiveOrders,
			UpdatedAt:          u.CreatedAt,
		}
	}
	return nil
}

func (us userStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s := us.st
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	c := *u
	return &c, nil
}
