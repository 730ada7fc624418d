package services

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"testing"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
)

// The services open transactions on *sql.DB before handing the executor to a
// repository. The fakes below never touch the executor, so the tests register
// a stub driver whose connections only know how to begin, commit and roll
// back.

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("quickplate-stub", stubDriver{})
}

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("quickplate-stub", "")
	if err != nil {
		t.Fatalf("opening stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- fake order repository ---

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*models.Order
	items   map[string][]models.OrderItem
	history map[string][]models.StatusChange
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:  make(map[string]*models.Order),
		items:   make(map[string][]models.OrderItem),
		history: make(map[string][]models.StatusChange),
	}
}

func (f *fakeOrderRepo) put(order models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = &order
}

func (f *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) CreateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = int64(len(f.items[item.OrderID]) + 1)
	f.items[item.OrderID] = append(f.items[item.OrderID], *item)
	return item.ID, nil
}

func (f *fakeOrderRepo) AppendStatusChange(_ repositories.SQLExecutor, change *models.StatusChange) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	change.ID = int64(len(f.history[change.OrderID]) + 1)
	f.history[change.OrderID] = append(f.history[change.OrderID], *change)
	return change.ID, nil
}

func (f *fakeOrderRepo) GetOrderByID(orderID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) GetOrderItemsByOrderID(orderID string) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeOrderRepo) GetStatusHistoryByOrderID(orderID string) ([]models.StatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.StatusChange(nil), f.history[orderID]...), nil
}

func (f *fakeOrderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Order
	for _, order := range f.orders {
		if filters.CustomerID != nil && order.CustomerID != *filters.CustomerID {
			continue
		}
		if filters.RestaurantID != nil && order.RestaurantID != *filters.RestaurantID {
			continue
		}
		if filters.AcceptedBy != nil && (order.AcceptedBy == nil || *order.AcceptedBy != *filters.AcceptedBy) {
			continue
		}
		if filters.Unassigned && order.AcceptedBy != nil {
			continue
		}
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		result = append(result, *order)
	}
	return result, len(result), nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ repositories.SQLExecutor, orderID, expectedStatus, newStatus string, cancellationReason *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != expectedStatus {
		return false, nil
	}
	order.Status = newStatus
	if cancellationReason != nil {
		order.CancellationReason = cancellationReason
	}
	return true, nil
}

func (f *fakeOrderRepo) CancelNonTerminal(_ repositories.SQLExecutor, orderID string, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || models.IsTerminalStatus(order.Status) {
		return false, nil
	}
	order.Status = models.StatusCancelled
	order.CancellationReason = &reason
	return true, nil
}

func (f *fakeOrderRepo) AcceptDelivery(_ repositories.SQLExecutor, orderID string, deliveryPersonID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != models.StatusOutForDelivery || order.AcceptedBy != nil {
		return false, nil
	}
	order.AcceptedBy = &deliveryPersonID
	return true, nil
}

func (f *fakeOrderRepo) MarkDelivered(_ repositories.SQLExecutor, orderID string, deliveryPersonID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != models.StatusOutForDelivery || order.AcceptedBy == nil || *order.AcceptedBy != deliveryPersonID {
		return false, nil
	}
	order.Status = models.StatusDelivered
	return true, nil
}

func (f *fakeOrderRepo) ConfirmPayment(_ repositories.SQLExecutor, orderID string, capturedTotal *float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != models.StatusPending {
		return false, nil
	}
	order.Status = models.StatusConfirmed
	if capturedTotal != nil {
		order.TotalAmount = *capturedTotal
	}
	return true, nil
}

// --- fake offer repository ---

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*models.Offer
}

func newFakeOfferRepo(offers ...models.Offer) *fakeOfferRepo {
	f := &fakeOfferRepo{offers: make(map[string]*models.Offer)}
	for _, offer := range offers {
		cp := offer
		f.offers[strings.ToUpper(offer.Code)] = &cp
	}
	return f
}

func (f *fakeOfferRepo) CreateOffer(_ repositories.SQLExecutor, offer *models.Offer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToUpper(offer.Code)
	if _, exists := f.offers[key]; exists {
		return 0, repositories.ErrDuplicateKey
	}
	offer.ID = int64(len(f.offers) + 1)
	cp := *offer
	f.offers[key] = &cp
	return offer.ID, nil
}

func (f *fakeOfferRepo) GetOfferByID(id int64) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, offer := range f.offers {
		if offer.ID == id {
			cp := *offer
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOfferRepo) FindActiveByCode(code string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer, ok := f.offers[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || !offer.IsActive {
		return nil, repositories.ErrNotFound
	}
	cp := *offer
	return &cp, nil
}

func (f *fakeOfferRepo) GetOffers(activeOnly bool, page, pageSize int) ([]models.Offer, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Offer
	for _, offer := range f.offers {
		if activeOnly && !offer.IsActive {
			continue
		}
		result = append(result, *offer)
	}
	return result, len(result), nil
}

func (f *fakeOfferRepo) UpdateOffer(_ repositories.SQLExecutor, offer *models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToUpper(offer.Code)
	if _, ok := f.offers[key]; !ok {
		return repositories.ErrNotFound
	}
	cp := *offer
	f.offers[key] = &cp
	return nil
}

func (f *fakeOfferRepo) DeleteUnusedOffer(_ repositories.SQLExecutor, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, offer := range f.offers {
		if offer.ID == id {
			if offer.UsageCount > 0 {
				return false, nil
			}
			delete(f.offers, key)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOfferRepo) IncrementUsage(_ repositories.SQLExecutor, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offer, ok := f.offers[strings.ToUpper(code)]
	if !ok {
		return false, nil
	}
	if offer.UsageLimit != nil && offer.UsageCount >= *offer.UsageLimit {
		return false, nil
	}
	offer.UsageCount++
	return true, nil
}

func (f *fakeOfferRepo) usageCount(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offer, ok := f.offers[strings.ToUpper(code)]; ok {
		return offer.UsageCount
	}
	return 0
}

// --- fake restaurant repository ---

type fakeRestaurantRepo struct {
	restaurants map[int64]*models.Restaurant
	menu        map[int64][]models.MenuItem
}

func newFakeRestaurantRepo() *fakeRestaurantRepo {
	return &fakeRestaurantRepo{
		restaurants: make(map[int64]*models.Restaurant),
		menu:        make(map[int64][]models.MenuItem),
	}
}

func (f *fakeRestaurantRepo) CreateRestaurant(_ repositories.SQLExecutor, restaurant *models.Restaurant) (int64, error) {
	restaurant.ID = int64(len(f.restaurants) + 1)
	cp := *restaurant
	f.restaurants[restaurant.ID] = &cp
	return restaurant.ID, nil
}

func (f *fakeRestaurantRepo) GetRestaurantByID(id int64) (*models.Restaurant, error) {
	restaurant, ok := f.restaurants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *restaurant
	return &cp, nil
}

func (f *fakeRestaurantRepo) GetRestaurants(filters models.RestaurantFilters) ([]models.Restaurant, int, error) {
	var result []models.Restaurant
	for _, restaurant := range f.restaurants {
		result = append(result, *restaurant)
	}
	return result, len(result), nil
}

func (f *fakeRestaurantRepo) UpdateRestaurant(_ repositories.SQLExecutor, restaurant *models.Restaurant) error {
	if _, ok := f.restaurants[restaurant.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *restaurant
	f.restaurants[restaurant.ID] = &cp
	return nil
}

func (f *fakeRestaurantRepo) DeleteRestaurant(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.restaurants[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.restaurants, id)
	return nil
}

func (f *fakeRestaurantRepo) CreateMenuItem(_ repositories.SQLExecutor, item *models.MenuItem) (int64, error) {
	item.ID = int64(len(f.menu[item.RestaurantID]) + 1)
	f.menu[item.RestaurantID] = append(f.menu[item.RestaurantID], *item)
	return item.ID, nil
}

func (f *fakeRestaurantRepo) GetMenuItemByID(id int64) (*models.MenuItem, error) {
	for _, items := range f.menu {
		for _, item := range items {
			if item.ID == id {
				cp := item
				return &cp, nil
			}
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeRestaurantRepo) GetMenuItems(restaurantID int64) ([]models.MenuItem, error) {
	return append([]models.MenuItem(nil), f.menu[restaurantID]...), nil
}

func (f *fakeRestaurantRepo) UpdateMenuItem(_ repositories.SQLExecutor, item *models.MenuItem) error {
	items := f.menu[item.RestaurantID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeRestaurantRepo) DeleteMenuItem(_ repositories.SQLExecutor, id int64) error {
	for restaurantID, items := range f.menu {
		for i := range items {
			if items[i].ID == id {
				f.menu[restaurantID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return repositories.ErrNotFound
}

// --- fake payment gateway ---

type fakeGateway struct {
	mu         sync.Mutex
	lastParams CheckoutSessionParams
	session    *CheckoutSession
	err        error
	calls      int
}

func (f *fakeGateway) CreateCheckoutSession(params CheckoutSessionParams) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastParams = params
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.session != nil {
		return f.session, nil
	}
	return &CheckoutSession{ID: "cs_test", URL: "https://pay.example.com/cs_test"}, nil
}
