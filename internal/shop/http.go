package shop

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"WestMarket/internal/catalog"
	"WestMarket/internal/ledger"
	"WestMarket/pkg/kit"
)

const maxBodyBytes = 1 << 20

// Server owns all access to the two stores. Every mutating flow runs its
// full read-modify-write cycle under mu, so a later save can not silently
// overwrite an earlier one.
type Server struct {
	Catalog catalog.Store
	Ledger  ledger.Store
	Log     *zap.Logger

	AdminLimiter *kit.IPRateLimiter

	mu sync.Mutex
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Get("/products", s.listProducts)

	r.Get("/cart", s.viewCart)
	r.Post("/cart/items", s.addToCart)
	r.Post("/checkout", s.checkout)

	r.Group(func(ar chi.Router) {
		if s.AdminLimiter != nil {
			ar.Use(s.AdminLimiter.Middleware)
		}
		ar.Get("/admin/inventory", s.listProducts)
		ar.Post("/admin/products", s.addProduct)
	})

	return r
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Catalog.Ping(ctx); err != nil {
		s.logWarn("readyz failed: catalog", err)
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	if err := s.Ledger.Ping(ctx); err != nil {
		s.logWarn("readyz failed: ledger", err)
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Catalog.Load(r.Context())
	if err != nil {
		s.logError("load catalog failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	kit.WriteJSON(w, http.StatusOK, products)
}

type cartResp struct {
	Items   []ledger.Line `json:"items"`
	Total   float64       `json:"total"`
	Message string        `json:"message,omitempty"`
}

func (s *Server) viewCart(w http.ResponseWriter, r *http.Request) {
	lines, err := s.Ledger.Load(r.Context())
	if err != nil {
		s.logError("load ledger failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	resp := cartResp{Items: lines, Total: cartTotal(lines)}
	if resp.Items == nil {
		resp.Items = []ledger.Line{}
	}
	if len(lines) == 0 {
		resp.Message = "cart is empty"
	}
	kit.WriteJSON(w, http.StatusOK, resp)
}

type addToCartReq struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	// Quantity 0 is the "nothing selected" warning path, never a mutation.
	if req.Quantity <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "quantity must be greater than 0", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.Catalog.Load(r.Context())
	if err != nil {
		s.logError("load catalog failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	p, ok := findByID(products, req.ProductID)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": req.ProductID})
		return
	}

	// Upper bound against the stock snapshot. Stock itself is only
	// decremented at checkout.
	if req.Quantity > p.Stock {
		kit.WriteError(w, r, http.StatusBadRequest, "quantity exceeds available stock", map[string]any{
			"stock": p.Stock,
		})
		return
	}

	line, err := ledger.NewLine(p.Name, req.Quantity, catalog.Round2(float64(req.Quantity)*p.Price))
	if err != nil {
		s.logError("build cart line failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if err := ledger.Append(r.Context(), s.Ledger, line); err != nil {
		s.logError("append cart line failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, line)
}

type addProductReq struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	Image string  `json:"image"`
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.Catalog.Load(r.Context())
	if err != nil {
		s.logError("load catalog failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	p, err := catalog.NewProduct(catalog.NextID(products), req.Name, req.Price, req.Stock, req.Image)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	// Checkout joins ledger lines to products by name, so names must be
	// unique at the point they enter the catalog.
	for _, q := range products {
		if strings.EqualFold(q.Name, p.Name) {
			kit.WriteError(w, r, http.StatusConflict, "product name already exists", map[string]any{
				"name": q.Name,
			})
			return
		}
	}

	if err := s.Catalog.Save(r.Context(), append(products, p)); err != nil {
		s.logError("save catalog failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) logWarn(msg string, err error) {
	if s.Log != nil {
		s.Log.Warn(msg, zap.Error(err))
	}
}

func (s *Server) logError(msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
}

func findByID(products []catalog.Product, id int) (catalog.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func cartTotal(lines []ledger.Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Total
	}
	return catalog.Round2(sum)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}
