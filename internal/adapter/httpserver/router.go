package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"

	"github.com/shopspring/decimal"

	"storefront/internal/adapter/bodyparse"
	"storefront/internal/core/domain"
	"storefront/internal/core/service"
	"storefront/internal/label"
)

// Credentials is the single fixed admin login pair.
type Credentials struct {
	Username string
	Password string
}

// StaticServer is the public-asset collaborator any unmatched GET falls
// through to.
type StaticServer interface {
	Serve(path string) (body []byte, contentType string, ok bool)
}

// Router maps (method, path) onto store operations. Handlers only go
// through the store's public interface and translate its errors into
// responses; a backend failure never escapes as anything but a 500.
type Router struct {
	store  *service.Store
	static StaticServer
	creds  Credentials
	logger *slog.Logger
}

func NewRouter(store *service.Store, static StaticServer, creds Credentials, logger *slog.Logger) *Router {
	return &Router{store: store, static: static, creds: creds, logger: logger}
}

func (rt *Router) Route(ctx context.Context, req *Request) *Response {
	if req.Method == "OPTIONS" {
		return text(200, "")
	}

	switch {
	case req.Method == "POST" && req.Path == "/api/login":
		return rt.handleLogin(req)
	case req.Method == "GET" && req.Path == "/api/products":
		return rt.handleListProducts()
	case req.Method == "POST" && req.Path == "/api/products":
		return rt.handleReplaceProducts(ctx, req)
	case req.Method == "POST" && req.Path == "/api/addProduct":
		return rt.handleAddProduct(ctx, req)
	case req.Method == "POST" && req.Path == "/api/deleteProduct":
		return rt.handleDeleteProduct(ctx, req)
	case req.Method == "GET" && req.Path == "/api/orders":
		return rt.handleListOrders()
	case req.Method == "POST" && req.Path == "/api/orders":
		return rt.handleCreateOrder(ctx, req)
	case req.Method == "GET" && req.Path == "/api/shippingLabel":
		return rt.handleShippingLabel(req)
	case req.Method == "GET":
		if body, contentType, ok := rt.static.Serve(req.Path); ok {
			return &Response{Status: 200, ContentType: contentType, Body: body}
		}
		return text(404, "Not Found")
	default:
		return text(405, "Method Not Allowed")
	}
}

func (rt *Router) handleLogin(req *Request) *Response {
	fields := bodyparse.Fields(req.Body)
	if fields["username"] == rt.creds.Username && fields["password"] == rt.creds.Password {
		return text(200, "success")
	}
	return text(401, "Invalid credentials")
}

type productPayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
	Img   string `json:"img"`
	Stock int    `json:"stock"`
}

func (rt *Router) handleListProducts() *Response {
	products := rt.store.ListProducts()
	payload := make([]productPayload, len(products))
	for i, p := range products {
		payload[i] = productPayload{
			ID:    p.ID,
			Title: p.Title,
			Price: domain.Money(p.Price),
			Img:   p.Img,
			Stock: p.Stock,
		}
	}
	return jsonBody(200, payload)
}

func (rt *Router) handleAddProduct(ctx context.Context, req *Request) *Response {
	fields := bodyparse.Fields(req.Body)

	if fields["title"] == "" {
		return jsonBody(400, map[string]string{"error": "title is required"})
	}
	price, err := decimal.NewFromString(fields["price"])
	if err != nil || price.IsNegative() {
		return jsonBody(400, map[string]string{"error": "invalid price"})
	}
	stock := 0
	if fields["stock"] != "" {
		if stock, err = parseStock(fields["stock"]); err != nil {
			return jsonBody(400, map[string]string{"error": "invalid stock"})
		}
	}

	p, err := rt.store.AddProduct(ctx, fields["title"], price, fields["img"], stock)
	if err != nil {
		rt.logger.Error("add product failed", "error", err)
		return text(500, "Failed to save product")
	}
	return text(200, "Product added successfully: "+p.ID)
}

func (rt *Router) handleDeleteProduct(ctx context.Context, req *Request) *Response {
	fields := bodyparse.Fields(req.Body)
	id := fields["id"]
	if id == "" {
		return jsonBody(400, map[string]string{"error": "id is required"})
	}

	removed, err := rt.store.DeleteProduct(ctx, id)
	if err != nil {
		rt.logger.Error("delete product failed", "product_id", id, "error", err)
		return text(500, "Failed to delete product")
	}
	if !removed {
		return text(404, "Product not found")
	}
	return text(200, "Product deleted")
}

func (rt *Router) handleReplaceProducts(ctx context.Context, req *Request) *Response {
	var incoming []struct {
		ID    string      `json:"id"`
		Title string      `json:"title"`
		Price json.Number `json:"price"`
		Img   string      `json:"img"`
		Stock int         `json:"stock"`
	}
	if err := json.Unmarshal(req.Body, &incoming); err != nil {
		return text(400, "Expected JSON array")
	}

	products := make([]domain.Product, len(incoming))
	for i, in := range incoming {
		if in.ID == "" || in.Title == "" {
			return text(400, "Invalid product format")
		}
		price, err := decimal.NewFromString(in.Price.String())
		if err != nil || price.IsNegative() || in.Stock < 0 {
			return text(400, "Invalid product format")
		}
		products[i] = domain.Product{ID: in.ID, Title: in.Title, Price: price, Img: in.Img, Stock: in.Stock}
	}

	if err := rt.store.ReplaceProducts(ctx, products); err != nil {
		rt.logger.Error("replace products failed", "error", err)
		return text(500, "Failed to save products")
	}
	return text(200, "Products updated")
}

type orderPayload struct {
	ID              string `json:"id"`
	Product         string `json:"product"`
	Name            string `json:"name"`
	Contact         string `json:"contact"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	ProductPrice    string `json:"productPrice"`
	DeliveryCharges string `json:"deliveryCharges"`
	TotalAmount     string `json:"totalAmount"`
	Payment         string `json:"payment"`
	CreatedAt       string `json:"createdAt"`
}

func toOrderPayload(o domain.Order) orderPayload {
	return orderPayload{
		ID:              o.ID,
		Product:         o.Product,
		Name:            o.Name,
		Contact:         o.Contact,
		Email:           o.Email,
		Address:         o.Address,
		ProductPrice:    domain.Money(o.ProductPrice),
		DeliveryCharges: domain.Money(o.DeliveryCharges),
		TotalAmount:     domain.Money(o.TotalAmount),
		Payment:         o.Payment,
		CreatedAt:       o.CreatedAt,
	}
}

func (rt *Router) handleListOrders() *Response {
	orders := rt.store.ListOrders()
	payload := make([]orderPayload, len(orders))
	for i, o := range orders {
		payload[i] = toOrderPayload(o)
	}
	return jsonBody(200, payload)
}

type orderRequest struct {
	Name    string            `json:"name"`
	Contact string            `json:"contact"`
	Email   string            `json:"email"`
	Address string            `json:"address"`
	Payment string            `json:"payment"`
	Items   []domain.LineItem `json:"items"`

	// Single-product fallback kept for the original storefront page.
	Product string `json:"product"`
	Qty     int    `json:"qty"`
}

type orderResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

func (rt *Router) handleCreateOrder(ctx context.Context, req *Request) *Response {
	var in orderRequest
	if err := json.Unmarshal(req.Body, &in); err != nil {
		return jsonBody(400, orderResponse{Status: "error", Message: "Invalid JSON body"})
	}

	if in.Name == "" || in.Contact == "" || in.Email == "" || in.Address == "" {
		return jsonBody(400, orderResponse{Status: "error", Message: "Missing required fields"})
	}

	items := in.Items
	if len(items) == 0 && in.Product != "" {
		qty := in.Qty
		if qty <= 0 {
			qty = 1
		}
		items = []domain.LineItem{{Product: in.Product, Qty: qty}}
	}
	if len(items) == 0 {
		return jsonBody(400, orderResponse{Status: "error", Message: "Missing line items"})
	}

	cust := domain.Customer{
		Name:    in.Name,
		Contact: in.Contact,
		Email:   in.Email,
		Address: in.Address,
		Payment: in.Payment,
	}

	order, err := rt.store.PlaceOrder(ctx, cust, items)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrProductNotFound):
		return jsonBody(400, orderResponse{Status: "error", Message: "Invalid product"})
	case errors.Is(err, service.ErrInsufficientStock):
		return jsonBody(400, orderResponse{Status: "error", Message: "Product out of stock"})
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrEmptyOrder):
		return jsonBody(400, orderResponse{Status: "error", Message: "Invalid line items"})
	default:
		rt.logger.Error("place order failed", "error", err)
		return jsonBody(500, orderResponse{Status: "error", Message: "Failed to place order"})
	}

	return jsonBody(200, orderResponse{
		Status:  "success",
		Message: "Order placed successfully",
		OrderID: order.ID,
	})
}

func (rt *Router) handleShippingLabel(req *Request) *Response {
	values, _ := url.ParseQuery(req.Query)
	id := values.Get("id")
	if id == "" {
		return text(400, "Missing id parameter")
	}

	order, ok := rt.store.GetOrder(id)
	if !ok {
		return text(404, "Order not found")
	}
	return text(200, label.Render(order))
}

func parseStock(s string) (int, error) {
	n, err := decimal.NewFromString(s)
	if err != nil || !n.IsInteger() || n.IsNegative() {
		return 0, errors.New("invalid stock")
	}
	return int(n.IntPart()), nil
}
