package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/core/domain"
	"storefront/internal/port"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order has no line items")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// Store owns the in-memory product catalog, order ledger, and id counters.
// A single mutex serializes every operation, so an allocated id and the
// insert it names can never interleave with another caller. All mutations
// persist through the repository before being committed in memory.
type Store struct {
	repo   port.DatabaseRepository
	logger *slog.Logger

	mu         sync.Mutex
	products   map[string]domain.Product
	orders     []domain.Order // append order; ListOrders reverses
	productSeq int64
	orderSeq   int64
}

func NewStore(repo port.DatabaseRepository, logger *slog.Logger) *Store {
	return &Store{
		repo:     repo,
		logger:   logger,
		products: make(map[string]domain.Product),
	}
}

// Load rebuilds the in-memory state from the repository and seeds both id
// counters from the highest persisted sequence numbers.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[string]domain.Product, len(snap.Products))
	for _, p := range snap.Products {
		s.products[p.ID] = p
	}

	s.orders = make([]domain.Order, len(snap.Orders))
	copy(s.orders, snap.Orders)
	sort.Slice(s.orders, func(i, j int) bool {
		return domain.IDSequence(s.orders[i].ID) < domain.IDSequence(s.orders[j].ID)
	})

	s.productSeq = snap.MaxProductSeq
	s.orderSeq = snap.MaxOrderSeq

	s.logger.Info("store loaded",
		"products", len(s.products),
		"orders", len(s.orders),
		"product_seq", s.productSeq,
		"order_seq", s.orderSeq,
	)
	return nil
}

// ListProducts returns a snapshot of the catalog ordered by id sequence.
func (s *Store) ListProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.IDSequence(out[i].ID) < domain.IDSequence(out[j].ID)
	})
	return out
}

func (s *Store) GetProduct(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	return p, ok
}

// AddProduct allocates the next product id and inserts the product. The
// allocation and insert happen under one lock acquisition, so concurrent
// creations can never observe the same counter value.
func (s *Store) AddProduct(ctx context.Context, title string, price decimal.Decimal, img string, stock int) (domain.Product, error) {
	if img == "" {
		img = domain.PlaceholderImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.productSeq++
	p := domain.Product{
		ID:    domain.ProductID(s.productSeq),
		Title: title,
		Price: price,
		Img:   img,
		Stock: stock,
	}

	if err := s.repo.UpsertProduct(ctx, p); err != nil {
		// The burned sequence number is deliberate: the allocator never
		// rolls back, only the collection does.
		return domain.Product{}, fmt.Errorf("persist product %s: %w", p.ID, err)
	}
	s.products[p.ID] = p
	return p, nil
}

// UpsertProduct inserts or fully replaces a product by id.
func (s *Store) UpsertProduct(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.upsertLocked(ctx, p)
}

func (s *Store) upsertLocked(ctx context.Context, p domain.Product) error {
	if err := s.repo.UpsertProduct(ctx, p); err != nil {
		return fmt.Errorf("persist product %s: %w", p.ID, err)
	}
	s.products[p.ID] = p
	if seq := domain.IDSequence(p.ID); seq > s.productSeq {
		s.productSeq = seq
	}
	return nil
}

// DeleteProduct removes a product. It reports false, not an error, when
// the id was absent, and touches neither memory nor the backend in that
// case.
func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return false, fmt.Errorf("delete product %s: %w", id, err)
	}
	delete(s.products, id)
	return true, nil
}

// ReplaceProducts swaps the whole catalog for the given set. The backend
// rewrites its table in one transaction and memory is swapped only after
// that succeeds, so a failure leaves the old catalog fully intact.
func (s *Store) ReplaceProducts(ctx context.Context, incoming []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]domain.Product, len(incoming))
	copy(rows, incoming)

	next := make(map[string]domain.Product, len(rows))
	maxSeq := s.productSeq
	for i := range rows {
		if rows[i].Img == "" {
			rows[i].Img = domain.PlaceholderImage
		}
		next[rows[i].ID] = rows[i]
		if seq := domain.IDSequence(rows[i].ID); seq > maxSeq {
			maxSeq = seq
		}
	}

	if err := s.repo.ReplaceProducts(ctx, rows); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	s.products = next
	s.productSeq = maxSeq
	return nil
}

// ListOrders returns a snapshot of the ledger, most recent first.
func (s *Store) ListOrders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[len(s.orders)-1-i] = o
	}
	return out
}

func (s *Store) GetOrder(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// PlaceOrder prices the line items against the current catalog (client
// supplied totals are never trusted), applies the delivery tiers, and
// commits the order and the stock decrements as one unit. Insufficient
// stock or an unknown product aborts the whole call with no partial
// state.
func (s *Store) PlaceOrder(ctx context.Context, cust domain.Customer, items []domain.LineItem) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Fold duplicate product ids so stock is checked against the combined
	// quantity.
	wanted := make(map[string]int, len(items))
	idOrder := make([]string, 0, len(items))
	for _, item := range items {
		if item.Qty <= 0 {
			return domain.Order{}, ErrInvalidQuantity
		}
		if _, seen := wanted[item.Product]; !seen {
			idOrder = append(idOrder, item.Product)
		}
		wanted[item.Product] += item.Qty
	}

	subtotal := decimal.Zero
	titles := make([]string, 0, len(idOrder))
	qtys := make([]int, 0, len(idOrder))
	touched := make([]domain.Product, 0, len(idOrder))
	for _, id := range idOrder {
		p, ok := s.products[id]
		if !ok {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		qty := wanted[id]
		if p.Stock < qty {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrInsufficientStock, id)
		}
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
		titles = append(titles, p.Title)
		qtys = append(qtys, qty)
		p.Stock -= qty
		touched = append(touched, p)
	}

	delivery := domain.DeliveryCharge(subtotal)
	payment := cust.Payment
	if payment == "" {
		payment = domain.DefaultPaymentMethod
	}

	s.orderSeq++
	order := domain.Order{
		ID:              domain.OrderID(s.orderSeq),
		Product:         domain.Summarize(titles, qtys),
		Name:            cust.Name,
		Contact:         cust.Contact,
		Email:           cust.Email,
		Address:         cust.Address,
		ProductPrice:    subtotal,
		DeliveryCharges: delivery,
		TotalAmount:     subtotal.Add(delivery),
		Payment:         payment,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.repo.CreateOrder(ctx, order, touched); err != nil {
		return domain.Order{}, fmt.Errorf("persist order %s: %w", order.ID, err)
	}

	for _, p := range touched {
		s.products[p.ID] = p
	}
	s.orders = append(s.orders, order)

	s.logger.Info("order placed",
		"order_id", order.ID,
		"total", domain.Money(order.TotalAmount),
		"items", len(idOrder),
	)
	return order, nil
}
