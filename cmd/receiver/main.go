package main

import (
	"encoding/json"
	"flag"
	"github.com/caarlos0/env/v6"
	"github.com/go-chi/chi"
	"log"
	"math/rand"
	"net/http"
	"time"
)

type Response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ServerConfig struct {
	ServerAddress string `env:"RUN_ADDRESS"`
}

func NewServerConfig() (*ServerConfig, error) {
	cfg := ServerConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func (c *ServerConfig) ParseFlags() {
	a := flag.String("a", ":7070", "Server address")
	flag.Parse()
	if isFlagPassed("a") || c.ServerAddress == "" {
		c.ServerAddress = *a
	}
}

// HandleMockDelivery accepts replayed offline actions with injected 429/500
// failures so retry and exhaustion behavior can be exercised end to end.
func HandleMockDelivery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actionID := r.Header.Get("X-Action-Id")
		if r.Header.Get("X-Offline-Replay") != "true" {
			log.Println("responding with error 400: not a replayed action")
			w.WriteHeader(http.StatusBadRequest)
			resBody, _ := json.Marshal(Response{Error: "Missing X-Offline-Replay header"})
			w.Write(resBody)
			return
		}
		log.Printf("received replayed action %s: %s %s (original timestamp %s)", actionID, r.Method, r.URL.Path, r.Header.Get("X-Original-Timestamp"))

		// mock http status 429 error
		chance429 := 10
		if chance429 > rand.Intn(100) {
			log.Println("responding with error 429")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			resBody, _ := json.Marshal(Response{Error: "No more than N requests per minute allowed"})
			w.Write(resBody)
			return
		}

		// mock http status 500 error
		chance500 := 20
		if chance500 > rand.Intn(100) {
			log.Println("responding with error 500")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		// mock normal behaviour
		log.Println("responding with status 200")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		resBody, _ := json.Marshal(Response{Message: "accepted " + actionID})
		w.Write(resBody)
	}
}

func InitServer(cfg *ServerConfig) (server *http.Server, err error) {
	r := chi.NewRouter()
	r.HandleFunc("/api/*", HandleMockDelivery())
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}

func main() {
	rand.Seed(time.Now().UnixNano())
	cfg, err := NewServerConfig()
	if err != nil {
		log.Println(err)
	}
	cfg.ParseFlags()
	server, err := InitServer(cfg)
	if err != nil {
		log.Println(err)
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println(err)
	}
}
