package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ndquoc/flashmart/internal/core/domain"
	"github.com/ndquoc/flashmart/internal/core/service"
)

type HTTPHandler struct {
	checkout *service.CheckoutService
	cart     *service.CartService
	catalog  *service.CatalogService
}

func NewHTTPHandler(checkout *service.CheckoutService, cart *service.CartService, catalog *service.CatalogService) *HTTPHandler {
	return &HTTPHandler{checkout: checkout, cart: cart, catalog: catalog}
}

func (h *HTTPHandler) Register(r *chi.Mux) {
	r.Post("/api/orders", h.placeOrder)
	r.Get("/api/orders/{buyerID}", h.orderHistory)

	r.Post("/api/cart/validate", h.validateCart)
	r.Get("/api/cart/{buyerID}", h.getCart)
	r.Post("/api/cart/{buyerID}/items", h.addCartItem)
	r.Patch("/api/cart/{buyerID}/items/{productID}", h.updateCartItem)
	r.Delete("/api/cart/{buyerID}/items/{productID}", h.removeCartItem)
	r.Delete("/api/cart/{buyerID}", h.clearCart)

	r.Get("/api/products", h.listProducts)
	r.Get("/api/products/{id}", h.getProduct)
	r.Get("/api/flash-sales", h.listFlashSales)
	r.Get("/api/flash-sales/{id}", h.getFlashSale)
}

type checkoutRequest struct {
	RequestID string            `json:"request_id"`
	BuyerID   int64             `json:"buyer_id"`
	Items     []domain.LineItem `json:"items"`
}

type validateCartRequest struct {
	Items []domain.LineItem `json:"items"`
}

func (h *HTTPHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BuyerID <= 0 {
		writeError(w, http.StatusBadRequest, "buyer_id is required")
		return
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
	}

	conf, err := h.checkout.PlaceOrder(r.Context(), req.BuyerID, req.RequestID, req.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"order_id":    conf.OrderID,
			"total_cents": conf.TotalCents,
		},
		"message": "order placed successfully",
	})
}

func (h *HTTPHandler) validateCart(w http.ResponseWriter, r *http.Request) {
	var req validateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
	}

	if err := h.cart.ValidateCart(r.Context(), req.Items); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "cart is valid",
	})
}

func (h *HTTPHandler) getCart(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}
	cart, err := h.cart.GetCart(r.Context(), buyerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": cart})
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *HTTPHandler) addCartItem(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.ProductID <= 0 || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "product_id and a positive quantity are required")
		return
	}

	if err := h.cart.AddItem(r.Context(), buyerID, req.ProductID, req.Quantity); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "item added to cart"})
}

func (h *HTTPHandler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	if err := h.cart.UpdateItemQuantity(r.Context(), buyerID, productID, req.Quantity); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "cart updated"})
}

func (h *HTTPHandler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	if err := h.cart.RemoveItem(r.Context(), buyerID, productID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "item removed from cart"})
}

func (h *HTTPHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}
	if err := h.cart.ClearCart(r.Context(), buyerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "cart cleared"})
}

func (h *HTTPHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		Category:      r.URL.Query().Get("category"),
		Search:        r.URL.Query().Get("search"),
		FlashSaleOnly: r.URL.Query().Get("flash_sale") == "true",
	}
	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out, "count": len(out)})
}

func (h *HTTPHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": toProductJSON(*p)})
}

func (h *HTTPHandler) listFlashSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.catalog.ListFlashSales(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]flashSaleJSON, 0, len(sales))
	for _, fs := range sales {
		out = append(out, toFlashSaleJSON(fs))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func (h *HTTPHandler) getFlashSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fs, err := h.catalog.GetFlashSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if fs == nil {
		writeError(w, http.StatusNotFound, "flash sale not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": toFlashSaleJSON(*fs)})
}

func (h *HTTPHandler) orderHistory(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := pathID(w, r, "buyerID")
	if !ok {
		return
	}
	orders, err := h.catalog.OrdersForBuyer(r.Context(), buyerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]orderSummaryJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderSummaryJSON{
			OrderID:    o.OrderID,
			CreatedAt:  o.CreatedAt,
			ItemCount:  o.ItemCount,
			TotalCents: o.TotalCents,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// writeServiceError maps the checkout error taxonomy onto HTTP statuses.
// Retryable kinds come back as 5xx so clients know resubmission may help;
// validation failures are 4xx and carry the offending product context.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrCartItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found in cart")
		return
	}

	var ce *domain.CheckoutError
	if !errors.As(err, &ce) {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	body := map[string]any{
		"success":    false,
		"error_kind": ce.Kind,
		"message":    ce.Error(),
		"retryable":  ce.Retryable(),
	}
	if ce.ProductID != 0 {
		ctx := map[string]any{"product_id": ce.ProductID}
		if ce.Kind == domain.ErrKindInsufficientStock {
			ctx["available"] = ce.Available
		}
		body["context"] = ctx
	}
	writeJSON(w, statusForKind(ce.Kind), body)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrKindEmptyCart:
		return http.StatusBadRequest
	case domain.ErrKindProductNotFound:
		return http.StatusNotFound
	case domain.ErrKindFlashSaleEnded:
		return http.StatusGone
	case domain.ErrKindInsufficientStock, domain.ErrKindDuplicateRequest:
		return http.StatusConflict
	case domain.ErrKindLockTimeout, domain.ErrKindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
