package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pharmapos/m/domain"
	"pharmapos/m/internal/cart"
	"pharmapos/m/internal/customers"
	"pharmapos/m/internal/report"
	"pharmapos/m/internal/sales"
	"pharmapos/m/internal/seed"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db        *sqlx.DB
	secret    string
	sales     *sales.Service
	customers *customers.Resolver
}

// New constructs a Handler.
func New(db *sqlx.DB, secret string) *Handler {
	return &Handler{
		db:        db,
		secret:    secret,
		sales:     sales.New(db),
		customers: customers.New(db),
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.searchMedicines)
			r.Post("/", h.createMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Delete("/{id}", h.deleteMedicine)
			r.Get("/expiry-alerts", h.expiryAlerts)
			r.Post("/import", h.importCatalog)
		})

		pr.Route("/invoices", func(r chi.Router) {
			r.Post("/quote", h.quoteInvoice)
			r.Post("/", h.createInvoice)
			r.Get("/", h.listInvoices)
			r.Get("/{id}", h.getInvoice)
			r.Delete("/{id}", h.deleteInvoice)
		})

		pr.Route("/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Get("/lookup", h.lookupCustomer)
			r.Get("/{key}/invoices", h.customerInvoices)
			r.Delete("/{key}", h.deleteCustomer)
		})

		pr.Route("/distributors", func(r chi.Router) {
			r.Post("/", h.createDistributor)
			r.Get("/", h.listDistributors)
			r.Get("/{id}", h.getDistributor)
			r.Put("/{id}", h.updateDistributor)
			r.Delete("/{id}", h.deleteDistributor)
			r.Route("/{id}/purchases", func(r chi.Router) {
				r.Post("/", h.addPurchase)
				r.Get("/", h.listPurchases)
				r.Put("/{purchaseID}", h.updatePurchase)
				r.Delete("/{purchaseID}", h.deletePurchase)
			})
		})

		pr.Route("/expenses", func(r chi.Router) {
			r.Post("/", h.addExpense)
			r.Get("/", h.listExpenses)
			r.Put("/{id}", h.updateExpense)
			r.Delete("/{id}", h.deleteExpense)
		})

		pr.Get("/reports/sales", h.salesReport)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication helpers

type authClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64, role string) (string, error) {
	claims := authClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	role := r.Context().Value(ctxRole)
	if role == nil {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	current := role.(string)
	for _, allowedRole := range allowed {
		if current == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

// Auth handlers

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "username, email, password and role are required")
		return
	}
	if req.Role != "owner" && req.Role != "employee" {
		respondError(w, http.StatusBadRequest, "role must be owner or employee")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	var userID int64
	err = h.db.QueryRowx(`INSERT INTO users (username, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Username, strings.ToLower(req.Email), hashed, req.Role).Scan(&userID)
	if err != nil {
		respondError(w, http.StatusConflict, "email already exists")
		return
	}

	token, err := h.generateToken(userID, req.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: domain.User{
		ID: int(userID), Username: req.Username, Email: strings.ToLower(req.Email), Role: req.Role,
	}})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user domain.User
	err := h.db.Get(&user, `SELECT id, username, email, password, role FROM users WHERE email = $1`, strings.ToLower(req.Email))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(int64(user.ID), user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "new_password is required")
		return
	}
	uid := r.Context().Value(ctxUserID).(int64)
	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	if _, err := h.db.Exec(`UPDATE users SET password = $1 WHERE id = $2`, hashed, uid); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// Medicine handlers

type medicineRequest struct {
	Name            string  `json:"name"`
	Salt            string  `json:"salt"`
	HSNCode         string  `json:"hsn_code"`
	BatchNo         string  `json:"batch_no"`
	ExpiryDate      string  `json:"expiry_date"`
	Scheme          string  `json:"scheme"`
	MRP             float64 `json:"mrp"`
	CostPrice       float64 `json:"cost_price"`
	SellingPrice    float64 `json:"selling_price"`
	DiscountPercent float64 `json:"discount_percent"`
	GSTPercent      float64 `json:"gst_percent"`
	StripSize       int64   `json:"strip_size"`
	Quantity        int64   `json:"quantity"`
	LooseQuantity   int64   `json:"loose_quantity"`
	Distributor     string  `json:"distributor"`
	IsH1Drug        bool    `json:"is_h1_drug"`
}

// toMedicine builds a catalog row from the request, keeping the two views
// of the discount consistent: an explicit selling price wins and recomputes
// the percentage, otherwise the percentage derives the price.
func (req *medicineRequest) toMedicine() domain.Medicine {
	m := domain.Medicine{
		Name:          strings.TrimSpace(req.Name),
		Salt:          req.Salt,
		HSNCode:       req.HSNCode,
		BatchNo:       req.BatchNo,
		ExpiryDate:    req.ExpiryDate,
		Scheme:        req.Scheme,
		MRP:           req.MRP,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		GSTPercent:    req.GSTPercent,
		StripSize:     req.StripSize,
		Quantity:      req.Quantity,
		LooseQuantity: req.LooseQuantity,
		Distributor:   req.Distributor,
		IsH1Drug:      req.IsH1Drug,
	}
	if m.SellingPrice > 0 {
		m.DiscountPercent = domain.DiscountFromPrices(m.MRP, m.SellingPrice)
	} else {
		m.DiscountPercent = req.DiscountPercent
		m.SellingPrice = domain.SellingPriceFromDiscount(m.MRP, m.DiscountPercent)
	}
	m.Recalculate()
	return m
}

const medicineColumns = `id, name, salt, hsn_code, batch_no, expiry_date, scheme, mrp, price_per_piece, cost_price, cost_price_per_piece, selling_price, selling_price_per_piece, discount_percent, gst_percent, strip_size, quantity, loose_quantity, total_pieces, distributor, is_h1_drug`

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var medicines []domain.Medicine
	var err error
	if query == "" {
		err = h.db.Select(&medicines, `SELECT `+medicineColumns+` FROM medicines ORDER BY name`)
	} else {
		like := "%" + query + "%"
		err = h.db.Select(&medicines, `SELECT `+medicineColumns+` FROM medicines WHERE name LIKE $1 OR salt LIKE $1 ORDER BY name LIMIT 25`, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to search medicines")
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner", "employee") {
		return
	}
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	m := req.toMedicine()
	var id int64
	err := h.db.QueryRowx(`INSERT INTO medicines (name, salt, hsn_code, batch_no, expiry_date, scheme, mrp, price_per_piece, cost_price, cost_price_per_piece, selling_price, selling_price_per_piece, discount_percent, gst_percent, strip_size, quantity, loose_quantity, total_pieces, distributor, is_h1_drug)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20) RETURNING id`,
		m.Name, m.Salt, m.HSNCode, m.BatchNo, m.ExpiryDate, m.Scheme,
		m.MRP, m.PricePerPiece, m.CostPrice, m.CostPricePerPiece,
		m.SellingPrice, m.SellingPricePerPiece, m.DiscountPercent, m.GSTPercent,
		m.StripSize, m.Quantity, m.LooseQuantity, m.TotalPieces, m.Distributor, m.IsH1Drug).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add medicine")
		return
	}
	m.ID = id
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner", "employee") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	m := req.toMedicine()
	m.ID = id
	res, err := h.db.Exec(`UPDATE medicines SET name = $1, salt = $2, hsn_code = $3, batch_no = $4, expiry_date = $5, scheme = $6, mrp = $7, price_per_piece = $8, cost_price = $9, cost_price_per_piece = $10, selling_price = $11, selling_price_per_piece = $12, discount_percent = $13, gst_percent = $14, strip_size = $15, quantity = $16, loose_quantity = $17, total_pieces = $18, distributor = $19, is_h1_drug = $20 WHERE id = $21`,
		m.Name, m.Salt, m.HSNCode, m.BatchNo, m.ExpiryDate, m.Scheme,
		m.MRP, m.PricePerPiece, m.CostPrice, m.CostPricePerPiece,
		m.SellingPrice, m.SellingPricePerPiece, m.DiscountPercent, m.GSTPercent,
		m.StripSize, m.Quantity, m.LooseQuantity, m.TotalPieces, m.Distributor, m.IsH1Drug, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update medicine")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete medicine")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type expiryAlert struct {
	domain.Medicine
	ExpiryStatus string `json:"expiry_status"`
}

func (h *Handler) expiryAlerts(w http.ResponseWriter, r *http.Request) {
	var medicines []domain.Medicine
	if err := h.db.Select(&medicines, `SELECT `+medicineColumns+` FROM medicines WHERE expiry_date != '' ORDER BY expiry_date`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch alerts")
		return
	}
	now := time.Now()
	alerts := []expiryAlert{}
	for _, m := range medicines {
		status := domain.ExpiryStatus(m.ExpiryDate, now)
		if status == domain.ExpiryExpired || status == domain.ExpiryNear {
			alerts = append(alerts, expiryAlert{Medicine: m, ExpiryStatus: status})
		}
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (h *Handler) importCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	rows, err := seed.ImportCatalog(h.db, r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"status": "imported", "rows": rows})
}

// Invoice handlers

type invoiceItemRequest struct {
	MedicineID  int64 `json:"medicine_id"`
	StripQty    int64 `json:"strip_qty"`
	LoosePieces int64 `json:"loose_pieces"`
}

type invoiceRequest struct {
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `json:"customer_phone"`
	Items         []invoiceItemRequest `json:"items"`
}

// buildCart stages the requested items against current catalog rows. Pricing
// fields are snapshotted here, exactly as they stand at this instant.
func (h *Handler) buildCart(items []invoiceItemRequest) (*cart.Cart, int, string) {
	if len(items) == 0 {
		return nil, http.StatusBadRequest, "at least one item is required"
	}
	c := cart.New()
	for _, item := range items {
		var m domain.Medicine
		err := h.db.Get(&m, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, item.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, http.StatusNotFound, fmt.Sprintf("medicine %d not found", item.MedicineID)
		}
		if err != nil {
			return nil, http.StatusInternalServerError, "unable to fetch medicine"
		}
		if err := c.AddItem(&m); err != nil {
			return nil, http.StatusBadRequest, fmt.Sprintf("%s is out of stock", m.Name)
		}
		if err := c.UpdateQuantity(m.ID, item.StripQty, item.LoosePieces); err != nil {
			return nil, http.StatusInternalServerError, "unable to update quantity"
		}
	}
	return c, 0, ""
}

func (h *Handler) quoteInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, status, msg := h.buildCart(req.Items)
	if status != 0 {
		respondError(w, status, msg)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"medicines": c.Lines(),
		"totals":    c.Totals(),
	})
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ident := sales.Identity{Name: req.CustomerName, Phone: strings.TrimSpace(req.CustomerPhone)}
	if ident.Phone != "" {
		if err := customers.ValidatePhone(ident.Phone); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := h.customers.FindOrCreate(ident.Name, ident.Phone)
		if err != nil {
			if errors.Is(err, customers.ErrNameRequired) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to resolve customer")
			return
		}
		ident.ID = id
		if existing, err := h.customers.FindByPhone(ident.Phone); err == nil {
			ident.Name = existing.Name
		}
	}

	c, status, msg := h.buildCart(req.Items)
	if status != 0 {
		respondError(w, status, msg)
		return
	}

	inv, err := h.sales.Build(c, ident)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sales.Commit(inv); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save invoice")
		return
	}
	// The sale is recorded at this point. A settlement failure leaves a
	// bookkeeping gap, not a lost sale, so it is logged rather than turned
	// into a failed save.
	if err := h.sales.Settle(inv.InvoiceID); err != nil {
		log.Printf("stock settlement failed for invoice %s: %v", inv.InvoiceID, err)
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.invoiceFilter(w, r)
	if !ok {
		return
	}
	invoices, err := h.sales.List(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list invoices")
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.sales.Get(chi.URLParam(r, "id"))
	if errors.Is(err, sales.ErrInvoiceNotFound) {
		respondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoice")
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	err := h.sales.Delete(chi.URLParam(r, "id"))
	if errors.Is(err, sales.ErrInvoiceNotFound) {
		respondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete invoice")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "invoice deleted, stock restored"})
}

// invoiceFilter builds a sales.ListFilter from query parameters, resolving
// named report windows to date bounds.
func (h *Handler) invoiceFilter(w http.ResponseWriter, r *http.Request) (sales.ListFilter, bool) {
	start, end, err := report.Window(
		strings.TrimSpace(r.URL.Query().Get("type")),
		strings.TrimSpace(r.URL.Query().Get("start_date")),
		strings.TrimSpace(r.URL.Query().Get("end_date")),
		time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid report window; dates must be YYYY-MM-DD")
		return sales.ListFilter{}, false
	}
	if start == "" {
		start = strings.TrimSpace(r.URL.Query().Get("start_date"))
		end = strings.TrimSpace(r.URL.Query().Get("end_date"))
		for _, d := range []string{start, end} {
			if d != "" {
				if _, err := time.Parse("2006-01-02", d); err != nil {
					respondError(w, http.StatusBadRequest, "dates must be in YYYY-MM-DD format")
					return sales.ListFilter{}, false
				}
			}
		}
	}
	return sales.ListFilter{
		CustomerKey: strings.TrimSpace(r.URL.Query().Get("customer_id")),
		StartDate:   start,
		EndDate:     end,
	}, true
}

// Customer handlers

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.customers.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list customers")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) lookupCustomer(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if err := customers.ValidatePhone(phone); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.customers.FindByPhone(phone)
	if errors.Is(err, customers.ErrNotFound) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to look up customer")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) customerInvoices(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.invoiceFilter(w, r)
	if !ok {
		return
	}
	filter.CustomerKey = chi.URLParam(r, "key")
	invoices, err := h.sales.List(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchase history")
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	key := chi.URLParam(r, "key")
	if key == domain.WalkInCustomerKey {
		respondError(w, http.StatusForbidden, customers.ErrWalkInProtected.Error())
		return
	}
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	err = h.customers.Delete(id)
	if errors.Is(err, customers.ErrNotFound) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete customer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Distributor handlers

type distributorRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	GST            string `json:"gst"`
	AdditionalInfo string `json:"additional_info"`
}

func (h *Handler) createDistributor(w http.ResponseWriter, r *http.Request) {
	var req distributorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO distributors (name, phone, gst, additional_info) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Name, req.Phone, req.GST, req.AdditionalInfo).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add distributor")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listDistributors(w http.ResponseWriter, r *http.Request) {
	var distributors []domain.Distributor
	if err := h.db.Select(&distributors, `SELECT id, name, phone, gst, additional_info, created_at FROM distributors ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list distributors")
		return
	}
	respondJSON(w, http.StatusOK, distributors)
}

func (h *Handler) getDistributor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid distributor id")
		return
	}
	var d domain.Distributor
	err = h.db.Get(&d, `SELECT id, name, phone, gst, additional_info, created_at FROM distributors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "distributor not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load distributor")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) updateDistributor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid distributor id")
		return
	}
	var req distributorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := h.db.Exec(`UPDATE distributors SET name = $1, phone = $2, gst = $3, additional_info = $4 WHERE id = $5`,
		req.Name, req.Phone, req.GST, req.AdditionalInfo, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update distributor")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteDistributor(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid distributor id")
		return
	}
	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete distributor")
		return
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM purchases WHERE distributor_id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete distributor purchases")
		return
	}
	if _, err := tx.Exec(`DELETE FROM distributors WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete distributor")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete distributor")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Purchase handlers

type purchaseRequest struct {
	BillNumber string  `json:"bill_number"`
	BillDate   string  `json:"bill_date"`
	TotalBill  float64 `json:"total_bill"`
	Notes      string  `json:"notes"`
	FinalPrice float64 `json:"final_price"`
}

func (h *Handler) addPurchase(w http.ResponseWriter, r *http.Request) {
	distributorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid distributor id")
		return
	}
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var id int64
	err = h.db.QueryRowx(`INSERT INTO purchases (distributor_id, bill_number, bill_date, total_bill, notes, final_price) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		distributorID, req.BillNumber, req.BillDate, req.TotalBill, req.Notes, req.FinalPrice).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add purchase")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	distributorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid distributor id")
		return
	}
	args := []any{distributorID}
	query := `SELECT id, distributor_id, bill_number, bill_date, total_bill, notes, final_price FROM purchases WHERE distributor_id = $1`
	if month := strings.TrimSpace(r.URL.Query().Get("month")); month != "" {
		args = append(args, month)
		query += fmt.Sprintf(" AND strftime('%%m', bill_date) = $%d", len(args))
	}
	if year := strings.TrimSpace(r.URL.Query().Get("year")); year != "" {
		args = append(args, year)
		query += fmt.Sprintf(" AND strftime('%%Y', bill_date) = $%d", len(args))
	}
	query += " ORDER BY bill_date DESC"

	var purchases []domain.Purchase
	if err := h.db.Select(&purchases, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list purchases")
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := strconv.ParseInt(chi.URLParam(r, "purchaseID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.db.Exec(`UPDATE purchases SET bill_number = $1, bill_date = $2, total_bill = $3, notes = $4, final_price = $5 WHERE id = $6`,
		req.BillNumber, req.BillDate, req.TotalBill, req.Notes, req.FinalPrice, purchaseID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update purchase")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := strconv.ParseInt(chi.URLParam(r, "purchaseID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}
	if _, err := h.db.Exec(`DELETE FROM purchases WHERE id = $1`, purchaseID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete purchase")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Expense handlers

type expenseRequest struct {
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (req *expenseRequest) validate() string {
	if req.Date == "" || req.Category == "" || req.Name == "" || req.Amount == 0 {
		return "date, category, name and amount are required"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "date must be in YYYY-MM-DD format"
	}
	if !domain.ValidExpenseCategory(req.Category) {
		return "category must be one of " + strings.Join(domain.ExpenseCategories, ", ")
	}
	return ""
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO expenses (date, category, name, description, amount) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.Date, req.Category, req.Name, req.Description, req.Amount).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add expense")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	start, end, err := report.Window(
		strings.TrimSpace(r.URL.Query().Get("filter")),
		strings.TrimSpace(r.URL.Query().Get("start_date")),
		strings.TrimSpace(r.URL.Query().Get("end_date")),
		time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid filter; custom requires start_date and end_date in YYYY-MM-DD format")
		return
	}

	var (
		args    []any
		clauses []string
	)
	if start != "" {
		args = append(args, start)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if end != "" {
		args = append(args, end)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}
	query := `SELECT id, date, category, name, description, amount FROM expenses`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC"

	var expenses []domain.Expense
	if err := h.db.Select(&expenses, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list expenses")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"total":    report.ExpenseTotal(expenses),
	})
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	res, err := h.db.Exec(`UPDATE expenses SET date = $1, category = $2, name = $3, description = $4, amount = $5 WHERE id = $6`,
		req.Date, req.Category, req.Name, req.Description, req.Amount, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update expense")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	if _, err := h.db.Exec(`DELETE FROM expenses WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete expense")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reports

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	filter, ok := h.invoiceFilter(w, r)
	if !ok {
		return
	}
	invoices, err := h.sales.List(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch sales report")
		return
	}
	summary := report.Aggregate(invoices)
	respondJSON(w, http.StatusOK, map[string]any{
		"total_sales":  summary.TotalSales,
		"total_profit": summary.TotalProfit,
		"invoices":     invoices,
	})
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
