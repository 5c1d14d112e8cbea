// Package testserver - поддельный ресурс /promotions для тестов клиента.
package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Promotion - запись в хранилище сервера.
type Promotion struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Type      string   `json:"type"`
	Value     *float64 `json:"value"`
	ProductID *int64   `json:"product_id"`
	Ongoing   bool     `json:"ongoing"`
}

// Request - запрос, полученный сервером.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// ErrorResponse представляет структуру ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Hook может перехватить запрос; true - ответ уже записан.
type Hook func(w http.ResponseWriter, r *http.Request) bool

// Server - httptest сервер с хранилищем промоакций в памяти.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	nextID     int64
	promotions map[int64]Promotion
	requests   []Request
	hook       Hook
}

// New запускает сервер и закрывает его по окончании теста.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		nextID:     1,
		promotions: make(map[int64]Promotion),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/promotions", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.delete)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetHook устанавливает перехватчик запросов (nil снимает его).
func (s *Server) SetHook(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

// Seed кладёт промоакцию в хранилище и возвращает её id.
func (s *Server) Seed(p Promotion) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.promotions[p.ID] = p
	return p.ID
}

// Get возвращает промоакцию из хранилища.
func (s *Server) Get(id int64) (Promotion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.promotions[id]
	return p, ok
}

// Requests возвращает копию журнала запросов.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest возвращает последний запрос.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		hook := s.hook
		s.mu.Unlock()

		if hook != nil && hook(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	out := make([]Promotion, 0, len(s.promotions))
	for _, p := range s.promotions {
		if matches(p, q.Get("name"), q.Get("product_id"), q.Get("start_date"), q.Get("type"), q.Get("ongoing")) {
			out = append(out, p)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePromotion(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	p.ID = s.nextID
	s.nextID++
	s.promotions[p.ID] = p
	s.mu.Unlock()

	w.Header().Set("Location", fmt.Sprintf("/promotions/%d", p.ID))
	WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	p, found := s.promotions[id]
	s.mu.Unlock()
	if !found {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Promotion with id '%d' was not found.", id))
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, ok := decodePromotion(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.promotions[id]; !found {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Promotion with id '%d' was not found.", id))
		return
	}
	p.ID = id
	s.promotions[id] = p
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.promotions, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func decodePromotion(w http.ResponseWriter, r *http.Request) (Promotion, bool) {
	var p Promotion
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid Promotion: body of request contained bad or no data")
		return Promotion{}, false
	}
	if p.Name == "" {
		WriteError(w, http.StatusBadRequest, "Invalid Promotion: missing name")
		return Promotion{}, false
	}
	return p, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Promotion with id '%s' was not found.", chi.URLParam(r, "id")))
		return 0, false
	}
	return id, true
}

func matches(p Promotion, name, productID, startDate, typ, ongoing string) bool {
	if name != "" && p.Name != name {
		return false
	}
	if productID != "" && (p.ProductID == nil || strconv.FormatInt(*p.ProductID, 10) != productID) {
		return false
	}
	if startDate != "" && p.StartDate != startDate {
		return false
	}
	if typ != "" && p.Type != typ {
		return false
	}
	if ongoing != "" && strconv.FormatBool(p.Ongoing) != ongoing {
		return false
	}
	return true
}

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteError отправляет ответ с ошибкой
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
