package services

import (
	"fmt"
	"sort"
	"time"

	"shopmart/models"
	"shopmart/repositories"
)

// In-memory fakes for the store interfaces, shared by the service tests.

type memCartStore struct {
	nextCartID int
	nextItemID int
	carts      map[int]*models.Cart
	items      map[int]*models.CartItem
}

func newMemCartStore() *memCartStore {
	return &memCartStore{
		carts: map[int]*models.Cart{},
		items: map[int]*models.CartItem{},
	}
}

func (m *memCartStore) withItems(cart *models.Cart) *models.Cart {
	out := *cart
	out.Items, _ = m.GetItems(cart.ID)
	return &out
}

func (m *memCartStore) FindByUserID(userID int) (*models.Cart, error) {
	for _, cart := range m.carts {
		if cart.UserID != nil && *cart.UserID == userID {
			return m.withItems(cart), nil
		}
	}
	return nil, repositories.ErrCartNotFound
}

func (m *memCartStore) FindBySessionID(sessionID string) (*models.Cart, error) {
	for _, cart := range m.carts {
		if cart.SessionID != nil && *cart.SessionID == sessionID {
			return m.withItems(cart), nil
		}
	}
	return nil, repositories.ErrCartNotFound
}

func (m *memCartStore) FindByID(id int) (*models.Cart, error) {
	cart, ok := m.carts[id]
	if !ok {
		return nil, repositories.ErrCartNotFound
	}
	return m.withItems(cart), nil
}

func (m *memCartStore) Create(cart *models.Cart) error {
	m.nextCartID++
	cart.ID = m.nextCartID
	cart.CreatedAt = time.Now()
	cart.UpdatedAt = cart.CreatedAt
	stored := *cart
	stored.Items = nil
	m.carts[cart.ID] = &stored
	return nil
}

func (m *memCartStore) GetItems(cartID int) ([]models.CartItem, error) {
	items := []models.CartItem{}
	for _, item := range m.items {
		if item.CartID == cartID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *memCartStore) GetItemByID(itemID int) (*models.CartItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, fmt.Errorf("cart item %d not found", itemID)
	}
	out := *item
	return &out, nil
}

func (m *memCartStore) InsertItem(item *models.CartItem) error {
	m.nextItemID++
	item.ID = m.nextItemID
	stored := *item
	m.items[item.ID] = &stored
	return nil
}

func (m *memCartStore) UpdateItem(item *models.CartItem) error {
	stored := *item
	m.items[item.ID] = &stored
	return nil
}

func (m *memCartStore) DeleteItem(itemID int) error {
	delete(m.items, itemID)
	return nil
}

func (m *memCartStore) DeleteItems(cartID int) error {
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *memCartStore) MoveItems(fromCartID, toCartID int) error {
	for _, item := range m.items {
		if item.CartID == fromCartID {
			item.CartID = toCartID
		}
	}
	return nil
}

func (m *memCartStore) UpdateTotals(cart *models.Cart) error {
	stored, ok := m.carts[cart.ID]
	if !ok {
		return repositories.ErrCartNotFound
	}
	stored.CouponCode = cart.CouponCode
	stored.Subtotal = cart.Subtotal
	stored.TaxAmount = cart.TaxAmount
	stored.ShippingCost = cart.ShippingCost
	stored.DiscountAmount = cart.DiscountAmount
	stored.Total = cart.Total
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memCartStore) Delete(cartID int) error {
	delete(m.carts, cartID)
	return m.DeleteItems(cartID)
}

func (m *memCartStore) DeleteAbandoned(cutoff time.Time) (int, error) {
	removed := 0
	for id, cart := range m.carts {
		items, _ := m.GetItems(id)
		if len(items) == 0 && cart.UpdatedAt.Before(cutoff) {
			delete(m.carts, id)
			removed++
		}
	}
	return removed, nil
}

type memCatalog struct {
	products   map[int]*models.Product
	variants   map[int]*models.ProductVariant
	categories map[int]*models.Category
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		products:   map[int]*models.Product{},
		variants:   map[int]*models.ProductVariant{},
		categories: map[int]*models.Category{},
	}
}

func (m *memCatalog) ListActiveProducts() ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memCatalog) GetAllCategories() ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range m.categories {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCatalog) GetProductByID(id int) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d not found", id)
	}
	out := *p
	return &out, nil
}

func (m *memCatalog) GetVariantByID(id int) (*models.ProductVariant, error) {
	v, ok := m.variants[id]
	if !ok {
		return nil, fmt.Errorf("variant %d not found", id)
	}
	out := *v
	return &out, nil
}

type mailCall struct {
	Template  string
	Locale    string
	To        string
	Variables map[string]string
}

type recordingMailer struct {
	calls []mailCall
	err   error
}

func (m *recordingMailer) SendTemplate(name, locale, to string, variables map[string]string) error {
	m.calls = append(m.calls, mailCall{Template: name, Locale: locale, To: to, Variables: variables})
	return m.err
}

type memOrderStore struct {
	nextID int
	orders map[int]*models.Order
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: map[int]*models.Order{}}
}

func (m *memOrderStore) Create(order *models.Order) error {
	m.nextID++
	order.ID = m.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].ID = i + 1
	}
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &stored
	return nil
}

func (m *memOrderStore) FindByID(id int) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repositories.ErrOrderNotFound
	}
	out := *order
	out.Items = append([]models.OrderItem(nil), order.Items...)
	return &out, nil
}

func (m *memOrderStore) FindByUser(userID, page, limit int) ([]models.Order, int, error) {
	orders := []models.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, len(orders), nil
}

func (m *memOrderStore) FindAll(page, limit int, status, search string) ([]models.Order, int, error) {
	orders := []models.Order{}
	for _, order := range m.orders {
		if status != "" && order.Status != status {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, len(orders), nil
}

func (m *memOrderStore) Update(order *models.Order) error {
	stored, ok := m.orders[order.ID]
	if !ok {
		return repositories.ErrOrderNotFound
	}
	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	stored.TransactionID = order.TransactionID
	stored.TrackingNumber = order.TrackingNumber
	stored.Notes = order.Notes
	stored.UpdatedAt = time.Now()
	return nil
}

type stubUsers struct {
	user *models.UserWithProfile
	err  error
}

func (s *stubUsers) GetUserWithProfile(id int) (*models.UserWithProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubCartClearer struct {
	cleared []int
	err     error
}

func (s *stubCartClearer) ClearCart(cart *models.Cart) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = append(s.cleared, cart.ID)
	cart.Items = nil
	return nil
}

type memNotificationStore struct {
	nextID        int
	nextPrefID    int
	notifications map[int]*models.Notification
	prefs         map[string]*models.NotificationPreference
	insertErr     error
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{
		notifications: map[int]*models.Notification{},
		prefs:         map[string]*models.NotificationPreference{},
	}
}

func prefKey(userID int, notificationType string) string {
	return fmt.Sprintf("%d/%s", userID, notificationType)
}

func (m *memNotificationStore) Insert(n *models.Notification) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	stored := *n
	m.notifications[n.ID] = &stored
	return nil
}

func (m *memNotificationStore) InsertBatch(notifications []*models.Notification) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, n := range notifications {
		if err := m.Insert(n); err != nil {
			return err
		}
	}
	return nil
}

func (m *memNotificationStore) FindByID(id int) (*models.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	out := *n
	return &out, nil
}

func (m *memNotificationStore) FindByUser(userID, page, limit int, unreadOnly bool) ([]models.Notification, int, error) {
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == nil || *n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, len(out), nil
}

func (m *memNotificationStore) FindPending(batchSize int) ([]models.Notification, error) {
	out := []models.Notification{}
	now := time.Now()
	for _, n := range m.notifications {
		if n.Status != models.NotificationStatusPending {
			continue
		}
		if n.ScheduledAt != nil && n.ScheduledAt.After(now) {
			continue
		}
		out = append(out, *n)
		if len(out) == batchSize {
			break
		}
	}
	return out, nil
}

func (m *memNotificationStore) FindFailedRetryable() ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.Status == models.NotificationStatusFailed && n.Attempts < models.MaxNotificationAttempts {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memNotificationStore) UpdateDeliveryState(n *models.Notification) error {
	stored, ok := m.notifications[n.ID]
	if !ok {
		return repositories.ErrNotificationNotFound
	}
	stored.Status = n.Status
	stored.Attempts = n.Attempts
	stored.FailureReason = n.FailureReason
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memNotificationStore) MarkRead(id, userID int) (bool, error) {
	n, ok := m.notifications[id]
	if !ok || n.UserID == nil || *n.UserID != userID || n.ReadAt != nil {
		return false, nil
	}
	now := time.Now()
	n.ReadAt = &now
	return true, nil
}

func (m *memNotificationStore) MarkManyRead(ids []int, userID int) (int, error) {
	count := 0
	for _, id := range ids {
		changed, _ := m.MarkRead(id, userID)
		if changed {
			count++
		}
	}
	return count, nil
}

func (m *memNotificationStore) MarkAllRead(userID int) (int, error) {
	count := 0
	for id := range m.notifications {
		changed, _ := m.MarkRead(id, userID)
		if changed {
			count++
		}
	}
	return count, nil
}

func (m *memNotificationStore) DeleteOld(cutoff time.Time) (int, error) {
	removed := 0
	for id, n := range m.notifications {
		if n.CreatedAt.Before(cutoff) && (n.ReadAt != nil || n.Status != models.NotificationStatusPending) {
			delete(m.notifications, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memNotificationStore) GetPreference(userID int, notificationType string) (*models.NotificationPreference, error) {
	p, ok := m.prefs[prefKey(userID, notificationType)]
	if !ok {
		return nil, repositories.ErrPreferenceNotFound
	}
	out := *p
	return &out, nil
}

func (m *memNotificationStore) ListPreferences(userID int) ([]models.NotificationPreference, error) {
	out := []models.NotificationPreference{}
	for _, p := range m.prefs {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memNotificationStore) UpsertPreference(p *models.NotificationPreference) error {
	key := prefKey(p.UserID, p.Type)
	if existing, ok := m.prefs[key]; ok {
		p.ID = existing.ID
	} else {
		m.nextPrefID++
		p.ID = m.nextPrefID
	}
	stored := *p
	m.prefs[key] = &stored
	return nil
}

type memTemplateStore struct {
	nextID    int
	templates map[string]*models.EmailTemplate
}

func newMemTemplateStore() *memTemplateStore {
	return &memTemplateStore{templates: map[string]*models.EmailTemplate{}}
}

func templateKey(name, locale string) string {
	return name + "/" + locale
}

func (m *memTemplateStore) FindByNameAndLocale(name, locale string) (*models.EmailTemplate, error) {
	t, ok := m.templates[templateKey(name, locale)]
	if !ok {
		return nil, repositories.ErrTemplateNotFound
	}
	out := *t
	return &out, nil
}

func (m *memTemplateStore) Create(t *models.EmailTemplate) error {
	m.nextID++
	t.ID = m.nextID
	t.Version = 1
	t.IsActive = true
	stored := *t
	m.templates[templateKey(t.Name, t.Locale)] = &stored
	return nil
}
