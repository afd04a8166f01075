package api

import (
	"database/sql"
	"net/http"

	"github.com/klemenv/vinoteka/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	bottlesHandler := &BottlesHandler{DB: db}
	cellarsHandler := &CellarsHandler{DB: db}
	swapsHandler := &SwapsHandler{DB: db}
	purchasesHandler := &PurchasesHandler{DB: db}
	eventsHandler := &EventsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Bottles: minting and burning are admin operations, the rest is
	// gated by ledger ownership inside the store.
	mux.Handle("GET /api/bottles", authMW(http.HandlerFunc(bottlesHandler.List)))
	mux.Handle("POST /api/bottles", authMW(requireAdmin(http.HandlerFunc(bottlesHandler.Mint))))
	mux.Handle("GET /api/bottles/{id}", authMW(http.HandlerFunc(bottlesHandler.Get)))
	mux.Handle("GET /api/bottles/{id}/value", authMW(http.HandlerFunc(bottlesHandler.Value)))
	mux.Handle("POST /api/bottles/{id}/transfer", authMW(http.HandlerFunc(bottlesHandler.Transfer)))
	mux.Handle("DELETE /api/bottles/{id}", authMW(http.HandlerFunc(bottlesHandler.Burn)))
	mux.Handle("PUT /api/bottles/{id}/photo", authMW(http.HandlerFunc(bottlesHandler.UploadPhoto)))
	mux.Handle("GET /api/bottles/{id}/photo", authMW(http.HandlerFunc(bottlesHandler.GetPhoto)))
	mux.Handle("POST /api/bottles/{id}/buy", authMW(http.HandlerFunc(purchasesHandler.Buy)))

	// Cellars.
	mux.Handle("GET /api/cellars", authMW(http.HandlerFunc(cellarsHandler.List)))
	mux.Handle("POST /api/cellars", authMW(requireAdmin(http.HandlerFunc(cellarsHandler.Mint))))
	mux.Handle("GET /api/cellars/{id}", authMW(http.HandlerFunc(cellarsHandler.Get)))
	mux.Handle("POST /api/cellars/{id}/bottles", authMW(http.HandlerFunc(cellarsHandler.AddBottle)))
	mux.Handle("GET /api/cellars/{id}/bottles", authMW(http.HandlerFunc(cellarsHandler.ListBottles)))
	mux.Handle("GET /api/cellars/{id}/value", authMW(http.HandlerFunc(cellarsHandler.Value)))
	mux.Handle("POST /api/cellars/{id}/transfer", authMW(http.HandlerFunc(cellarsHandler.Transfer)))
	mux.Handle("DELETE /api/cellars/{id}", authMW(http.HandlerFunc(cellarsHandler.Burn)))

	// Swaps and the holdings index.
	mux.Handle("POST /api/swaps", authMW(http.HandlerFunc(swapsHandler.Execute)))
	mux.Handle("POST /api/signers", authMW(http.HandlerFunc(swapsHandler.RegisterSigner)))
	mux.Handle("GET /api/holdings/{address}", authMW(http.HandlerFunc(swapsHandler.ListHoldings)))

	// Sale configuration (admin) and token plumbing.
	mux.Handle("PUT /api/config/sale", authMW(requireAdmin(http.HandlerFunc(purchasesHandler.SetSaleConfig))))
	mux.Handle("GET /api/config/sale", authMW(http.HandlerFunc(purchasesHandler.GetSaleConfig)))
	mux.Handle("POST /api/token/credit", authMW(requireAdmin(http.HandlerFunc(purchasesHandler.Credit))))
	mux.Handle("POST /api/token/approve", authMW(http.HandlerFunc(purchasesHandler.Approve)))

	// Notification log.
	mux.Handle("GET /api/events", authMW(http.HandlerFunc(eventsHandler.List)))

	return mux
}
