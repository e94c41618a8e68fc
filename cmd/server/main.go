package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"promostore/internal/app"
	"promostore/internal/catalog"
	"promostore/internal/config"
	"promostore/internal/observability"
)

type productsResponse struct {
	Products   any    `json:"products"`
	LastUpdate string `json:"lastUpdate,omitempty"`
}

type refreshRequest struct {
	Force bool `json:"force"`
}

type refreshResponse struct {
	Products int                    `json:"products"`
	Vendors  []catalog.VendorStatus `json:"vendors"`
}

func main() {
	cfg := config.Load()

	svc, cleanup, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("wiring failed: %v", err)
	}
	defer cleanup()

	observability.Start(cfg.MetricsPort)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", handleProducts(svc))
	mux.HandleFunc("GET /api/last-update", handleLastUpdate(svc))
	mux.HandleFunc("POST /api/refresh", handleRefresh(svc, cfg.AdminToken))

	log.Printf("listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func handleProducts(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.GetAllProducts(r.Context())
		if err != nil {
			log.Printf("products read failed: %v", err)
			http.Error(w, "catalog unavailable", http.StatusInternalServerError)
			return
		}
		last, err := svc.GetLastUpdate(r.Context())
		if err != nil {
			log.Printf("last-update read failed: %v", err)
		}
		resp := productsResponse{Products: products}
		if !last.IsZero() {
			resp.LastUpdate = last.Format(time.RFC3339)
		}
		writeJSON(w, resp)
	}
}

func handleLastUpdate(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last, err := svc.GetLastUpdate(r.Context())
		if err != nil {
			http.Error(w, "marker unavailable", http.StatusInternalServerError)
			return
		}
		out := map[string]string{}
		if !last.IsZero() {
			out["lastUpdate"] = last.Format(time.RFC3339)
		}
		writeJSON(w, out)
	}
}

// handleRefresh runs a live refresh only for callers presenting the admin
// token; everyone else gets the persisted snapshot refreshed or not.
func handleRefresh(svc *catalog.Service, adminToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		privileged := adminToken != "" && r.Header.Get("X-Admin-Token") == adminToken

		var req refreshRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		products, err := svc.Refresh(r.Context(), privileged, req.Force)
		if err != nil {
			log.Printf("refresh failed: %v", err)
			http.Error(w, "refresh failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, refreshResponse{Products: len(products), Vendors: svc.VendorStatuses()})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
