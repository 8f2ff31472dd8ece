// Package testutil provides in-memory implementations of the billing
// repositories, the payment gateway and the notifier for use case tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/examforge/examforge/internal/application/notification"
	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/domain/payment"
	vo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	subvo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
)

// Checkpointer is implemented by mocks that take part in MockTransactionManager
// rollbacks. Checkpoint returns a function restoring the current state.
type Checkpointer interface {
	Checkpoint() func()
}

type txKey struct{}

// MockTransactionManager emulates transactions by restoring every participant
// when fn fails. Nested calls join the outer transaction.
type MockTransactionManager struct {
	mu           sync.Mutex
	participants []Checkpointer
	Runs         int
}

func NewMockTransactionManager(participants ...Checkpointer) *MockTransactionManager {
	return &MockTransactionManager{participants: participants}
}

func (m *MockTransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	m.Runs++
	restores := make([]func(), 0, len(m.participants))
	for _, p := range m.participants {
		restores = append(restores, p.Checkpoint())
	}
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// =====================================================================
// Subscriptions
// =====================================================================

// MockSubscriptionRepository keeps snapshots so callers never share entities
// with the store, mirroring a real database.
type MockSubscriptionRepository struct {
	mu   sync.Mutex
	rows map[uint]subscription.Snapshot

	// BeforeSave runs before the version check, outside the lock. Tests use it
	// to simulate a concurrent writer.
	BeforeSave func(userID uint)
	GetErr     error
	SaveErr    error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{rows: make(map[uint]subscription.Snapshot)}
}

// Add stores s as-is, replacing any existing row.
func (m *MockSubscriptionRepository) Add(s *subscription.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.UserID()] = s.Snapshot()
}

// Stored returns the persisted state of userID, or nil.
func (m *MockSubscriptionRepository) Stored(userID uint) *subscription.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.rows[userID]
	if !ok {
		return nil
	}
	return subscription.Reconstruct(snap)
}

func (m *MockSubscriptionRepository) Checkpoint() func() {
	m.mu.Lock()
	saved := make(map[uint]subscription.Snapshot, len(m.rows))
	for k, v := range m.rows {
		saved[k] = v
	}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.rows = saved
		m.mu.Unlock()
	}
}

func (m *MockSubscriptionRepository) Get(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	s := m.Stored(userID)
	if s == nil {
		return nil, subscription.ErrNotFound
	}
	return s, nil
}

func (m *MockSubscriptionRepository) findFirst(match func(snap subscription.Snapshot) bool) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]uint, 0, len(m.rows))
	for k := range m.rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		if match(m.rows[k]) {
			return subscription.Reconstruct(m.rows[k]), nil
		}
	}
	return nil, subscription.ErrNotFound
}

func (m *MockSubscriptionRepository) FindByCorrelation(ctx context.Context, c subvo.Correlation) (*subscription.Subscription, error) {
	if c.IsZero() {
		return nil, subscription.ErrNotFound
	}
	return m.findFirst(func(snap subscription.Snapshot) bool { return snap.Correlation == c })
}

func (m *MockSubscriptionRepository) FindByEmail(ctx context.Context, email string) (*subscription.Subscription, error) {
	return m.findFirst(func(snap subscription.Snapshot) bool {
		return email != "" && strings.EqualFold(snap.Subscriber.Email, email)
	})
}

func (m *MockSubscriptionRepository) FindByGatewayCustomer(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	return m.findFirst(func(snap subscription.Snapshot) bool {
		return customerID != "" && snap.GatewayCustomerID == customerID
	})
}

func (m *MockSubscriptionRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*subscription.Subscription
	for _, snap := range m.rows {
		if snap.Status != subvo.StatusActive || snap.Expire == nil {
			continue
		}
		if !snap.Expire.Before(from) && snap.Expire.Before(to) {
			out = append(out, subscription.Reconstruct(snap))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Expire().Before(*out[j].Expire()) })
	return out, nil
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	if m.BeforeSave != nil {
		m.BeforeSave(s.UserID())
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rows[s.UserID()]
	if !ok {
		return subscription.ErrNotFound
	}
	if current.Version != s.Version() {
		return subscription.ErrVersionConflict
	}
	s.SetVersion(s.Version() + 1)
	m.rows[s.UserID()] = s.Snapshot()
	return nil
}

func (m *MockSubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*subscription.Subscription
	for id, snap := range m.rows {
		s := subscription.Reconstruct(snap)
		if !s.ExpireIfDue(now) {
			continue
		}
		s.SetVersion(s.Version() + 1)
		m.rows[id] = s.Snapshot()
		expired = append(expired, s)
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].UserID() < expired[j].UserID() })
	return expired, nil
}

func (m *MockSubscriptionRepository) ClearAbandoned(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleared := 0
	for id, snap := range m.rows {
		s := subscription.Reconstruct(snap)
		if !s.ClearIfAbandoned(olderThan) {
			continue
		}
		s.SetVersion(s.Version() + 1)
		m.rows[id] = s.Snapshot()
		cleared++
	}
	return cleared, nil
}

// =====================================================================
// Plans
// =====================================================================

type MockPlanRepository struct {
	mu     sync.Mutex
	plans  map[uint]*plan.Plan
	nextID uint

	// BeforeGatewayLookup runs outside the lock on every GetByGatewayPlanID.
	BeforeGatewayLookup func(gatewayPlanID string)
}

func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{plans: make(map[uint]*plan.Plan)}
}

// MustAdd creates a plan and panics on invalid input.
func (m *MockPlanRepository) MustAdd(title string, priceMinor int64, interval plan.Interval, gatewayPlanID string) *plan.Plan {
	p, err := plan.NewPlan(title, "", priceMinor, interval, gatewayPlanID, time.Now())
	if err != nil {
		panic(err)
	}
	if err := m.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func (m *MockPlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.plans {
		if strings.EqualFold(existing.Title(), p.Title()) {
			return plan.ErrDuplicateTitle
		}
	}
	m.nextID++
	p.SetID(m.nextID)
	m.plans[p.ID()] = p
	return nil
}

func (m *MockPlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID()]; !ok {
		return plan.ErrPlanNotFound
	}
	m.plans[p.ID()] = p
	return nil
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uint) (*plan.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, plan.ErrPlanNotFound
	}
	return p, nil
}

func (m *MockPlanRepository) GetByGatewayPlanID(ctx context.Context, gatewayPlanID string) (*plan.Plan, error) {
	if m.BeforeGatewayLookup != nil {
		m.BeforeGatewayLookup(gatewayPlanID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if gatewayPlanID != "" && p.GatewayPlanID() == gatewayPlanID {
			return p, nil
		}
	}
	return nil, plan.ErrPlanNotFound
}

func (m *MockPlanRepository) GetByTitle(ctx context.Context, title string) (*plan.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if strings.EqualFold(p.Title(), title) {
			return p, nil
		}
	}
	return nil, plan.ErrPlanNotFound
}

func (m *MockPlanRepository) List(ctx context.Context, activeOnly bool) ([]*plan.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*plan.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		if activeOnly && !p.IsActive() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// =====================================================================
// Ledger and webhook inbox
// =====================================================================

type MockLedgerRepository struct {
	mu      sync.Mutex
	entries []*payment.LedgerEntry
	nextID  uint

	RecordErr error
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

// Entries returns the stored entries in insertion order.
func (m *MockLedgerRepository) Entries() []*payment.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*payment.LedgerEntry(nil), m.entries...)
}

func (m *MockLedgerRepository) Checkpoint() func() {
	m.mu.Lock()
	saved := append([]*payment.LedgerEntry(nil), m.entries...)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.entries = saved
		m.mu.Unlock()
	}
}

func (m *MockLedgerRepository) indexOf(paymentID string) int {
	for i, e := range m.entries {
		if e.GatewayPaymentID() == paymentID {
			return i
		}
	}
	return -1
}

func (m *MockLedgerRepository) RecordCompleted(ctx context.Context, e *payment.LedgerEntry) (bool, error) {
	if m.RecordErr != nil {
		return false, m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(e.GatewayPaymentID()); i >= 0 {
		if m.entries[i].IsCompleted() {
			return false, nil
		}
		e.SetID(m.entries[i].ID())
		m.entries[i] = e
		return true, nil
	}
	m.nextID++
	e.SetID(m.nextID)
	m.entries = append(m.entries, e)
	return true, nil
}

func (m *MockLedgerRepository) RecordFailed(ctx context.Context, e *payment.LedgerEntry) (bool, error) {
	if m.RecordErr != nil {
		return false, m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(e.GatewayPaymentID()) >= 0 {
		return false, nil
	}
	m.nextID++
	e.SetID(m.nextID)
	m.entries = append(m.entries, e)
	return true, nil
}

func (m *MockLedgerRepository) GetByGatewayPaymentID(ctx context.Context, paymentID string) (*payment.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(paymentID); i >= 0 {
		return m.entries[i], nil
	}
	return nil, payment.ErrPaymentNotFound
}

func (m *MockLedgerRepository) List(ctx context.Context, filter payment.ListFilter) ([]*payment.LedgerEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*payment.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if filter.UserID == 0 || m.entries[i].UserID() == filter.UserID {
			matched = append(matched, m.entries[i])
		}
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	start := (page - 1) * size
	if start >= len(matched) {
		return nil, int64(len(matched)), nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

// CountByStatus counts entries with status.
func (m *MockLedgerRepository) CountByStatus(status vo.PaymentStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Status() == status {
			n++
		}
	}
	return n
}

type MockWebhookInbox struct {
	mu     sync.Mutex
	events map[string]*payment.WebhookEvent
}

func NewMockWebhookInbox() *MockWebhookInbox {
	return &MockWebhookInbox{events: make(map[string]*payment.WebhookEvent)}
}

func (m *MockWebhookInbox) Receive(ctx context.Context, e *payment.WebhookEvent) (*payment.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.events[e.EventID]; ok {
		copied := *existing
		return &copied, nil
	}
	stored := *e
	m.events[e.EventID] = &stored
	return e, nil
}

func (m *MockWebhookInbox) MarkProcessed(ctx context.Context, eventID, outcome string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not received", eventID)
	}
	e.ProcessedAt = &at
	e.Outcome = outcome
	return nil
}

// Event returns the stored event or nil.
func (m *MockWebhookInbox) Event(eventID string) *payment.WebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[eventID]
}

// =====================================================================
// Gateway
// =====================================================================

// MockGateway records calls and serves registered objects. A missing object
// yields a gateway 404.
type MockGateway struct {
	mu sync.Mutex

	Orders        map[string]*paymentgateway.Order
	Plans         map[string]*paymentgateway.Plan
	Subscriptions map[string]*paymentgateway.Subscription
	Payments      map[string]*paymentgateway.Payment

	CreateCustomerErr     error
	CreateOrderErr        error
	CreateSubscriptionErr error
	CancelErr             error
	PauseErr              error
	ResumeErr             error
	FetchErr              error

	CreatedCustomers     []paymentgateway.CreateCustomerRequest
	CreatedOrders        []paymentgateway.CreateOrderRequest
	CreatedSubscriptions []paymentgateway.CreateSubscriptionRequest
	Cancelled            []string
	Paused               []string
	Resumed              []string
	FetchCalls           int

	seq int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Orders:        make(map[string]*paymentgateway.Order),
		Plans:         make(map[string]*paymentgateway.Plan),
		Subscriptions: make(map[string]*paymentgateway.Subscription),
		Payments:      make(map[string]*paymentgateway.Payment),
	}
}

var _ paymentgateway.Gateway = (*MockGateway)(nil)

func notFound(kind, id string) error {
	return &paymentgateway.Error{StatusCode: 404, Code: "BAD_REQUEST_ERROR", Description: fmt.Sprintf("%s %s does not exist", kind, id)}
}

func (m *MockGateway) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_%d", prefix, m.seq)
}

func (m *MockGateway) CreateCustomer(ctx context.Context, req paymentgateway.CreateCustomerRequest) (*paymentgateway.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateCustomerErr != nil {
		return nil, m.CreateCustomerErr
	}
	m.CreatedCustomers = append(m.CreatedCustomers, req)
	return &paymentgateway.Customer{ID: m.nextID("cust"), Name: req.Name, Email: req.Email, Contact: req.Contact}, nil
}

func (m *MockGateway) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateOrderErr != nil {
		return nil, m.CreateOrderErr
	}
	m.CreatedOrders = append(m.CreatedOrders, req)
	order := &paymentgateway.Order{
		ID:          m.nextID("order"),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      "created",
		Notes:       req.Notes,
	}
	m.Orders[order.ID] = order
	return order, nil
}

func (m *MockGateway) FetchOrder(ctx context.Context, orderID string) (*paymentgateway.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if o, ok := m.Orders[orderID]; ok {
		return o, nil
	}
	return nil, notFound("order", orderID)
}

func (m *MockGateway) FetchPlan(ctx context.Context, planID string) (*paymentgateway.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if p, ok := m.Plans[planID]; ok {
		return p, nil
	}
	return nil, notFound("plan", planID)
}

func (m *MockGateway) CreateSubscription(ctx context.Context, req paymentgateway.CreateSubscriptionRequest) (*paymentgateway.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateSubscriptionErr != nil {
		return nil, m.CreateSubscriptionErr
	}
	m.CreatedSubscriptions = append(m.CreatedSubscriptions, req)
	sub := &paymentgateway.Subscription{
		ID:         m.nextID("sub"),
		PlanID:     req.PlanID,
		CustomerID: req.CustomerID,
		Status:     paymentgateway.SubscriptionStatusCreated,
		TotalCount: req.TotalCount,
		ShortURL:   "https://rzp.io/i/test",
		Notes:      req.Notes,
	}
	m.Subscriptions[sub.ID] = sub
	return sub, nil
}

func (m *MockGateway) FetchSubscription(ctx context.Context, subscriptionID string) (*paymentgateway.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if s, ok := m.Subscriptions[subscriptionID]; ok {
		return s, nil
	}
	return nil, notFound("subscription", subscriptionID)
}

func (m *MockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancelled = append(m.Cancelled, subscriptionID)
	return m.CancelErr
}

func (m *MockGateway) PauseSubscription(ctx context.Context, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paused = append(m.Paused, subscriptionID)
	return m.PauseErr
}

func (m *MockGateway) ResumeSubscription(ctx context.Context, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resumed = append(m.Resumed, subscriptionID)
	return m.ResumeErr
}

func (m *MockGateway) FetchPayment(ctx context.Context, paymentID string) (*paymentgateway.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if p, ok := m.Payments[paymentID]; ok {
		return p, nil
	}
	return nil, notFound("payment", paymentID)
}

// =====================================================================
// Notifier
// =====================================================================

type MockNotifier struct {
	mu      sync.Mutex
	Welcome []notification.WelcomeMessage
	Expired []notification.ExpiryMessage
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifyWelcome(ctx context.Context, msg notification.WelcomeMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Welcome = append(m.Welcome, msg)
}

func (m *MockNotifier) NotifyExpired(ctx context.Context, msg notification.ExpiryMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expired = append(m.Expired, msg)
}

func (m *MockNotifier) WelcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Welcome)
}

// =====================================================================
// Signature verification
// =====================================================================

// StubVerifier returns canned results for webhook and checkout verification.
type StubVerifier struct {
	Event       *paymentgateway.Event
	SignatureOK bool
	ParseErr    error
}

func (v *StubVerifier) VerifyWebhookSignature(body []byte, signature string) error {
	if !v.SignatureOK {
		return paymentgateway.ErrSignatureMismatch
	}
	return nil
}

func (v *StubVerifier) ParseWebhookEvent(body []byte) (*paymentgateway.Event, error) {
	if v.ParseErr != nil {
		return nil, v.ParseErr
	}
	return v.Event, nil
}

func (v *StubVerifier) VerifyCheckoutSignature(sig paymentgateway.CheckoutSignature) error {
	if !v.SignatureOK {
		return paymentgateway.ErrSignatureMismatch
	}
	return nil
}
