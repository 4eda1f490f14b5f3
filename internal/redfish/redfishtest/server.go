// Package redfishtest provides an in-process fake management controller for tests.
package redfishtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Credentials accepted by a new Server
const (
	Username = "root"
	Password = "0penBmc"
	Token    = "fake-token"
)

// Server is a TLS httptest server speaking a small subset of Redfish.
// Exported fields may be changed between requests while holding Lock.
type Server struct {
	*httptest.Server

	sync.Mutex
	LoginStatus     int                 // Status of session creation, 201 by default
	OmitToken       bool                // Create sessions without X-Auth-Token
	System          map[string]any      // Body of Systems/system
	SystemStatus    int                 // Status of Systems/system, 200 by default
	ThermalPath     string              // The only thermal path answering 200; empty for none
	Temperatures    []*float64          // Sensor readings served at ThermalPath
	OmitTemperature bool                // Serve the thermal resource without a Temperatures array
	ResetStatus     int                 // Status of reset posts, 204 by default
	Resets          []string            // Reset types received
	Sessions        map[string]struct{} // Live sessions
	Deleted         []string            // Deleted session IDs
	Requests        map[string]int      // Request count per "METHOD path"
	Calls           []string            // Every "METHOD path" in arrival order

	nextID int
}

// Reading is a helper for building Temperatures
func Reading(v float64) *float64 {
	return &v
}

// DefaultSystem returns a well-formed ComputerSystem body
func DefaultSystem() map[string]any {
	return map[string]any{
		"@odata.id":   "/redfish/v1/Systems/system",
		"@odata.type": "#ComputerSystem.v1_16_0.ComputerSystem",
		"Id":          "system",
		"Name":        "system",
		"PowerState":  "On",
		"Status":      map[string]string{"State": "Enabled", "Health": "OK"},
		"Actions": map[string]any{
			"#ComputerSystem.Reset": map[string]any{
				"target": "/redfish/v1/Systems/system/Actions/ComputerSystem.Reset",
				"ResetType@Redfish.AllowableValues": []string{"On", "ForceOff", "GracefulRestart", "ForceRestart"},
			},
		},
	}
}

// NewServer starts a fake controller with healthy defaults. Call Close when done.
func NewServer() *Server {
	s := &Server{
		LoginStatus:  http.StatusCreated,
		System:       DefaultSystem(),
		SystemStatus: http.StatusOK,
		ThermalPath:  "Chassis/chassis/ThermalSubSystem",
		Temperatures: []*float64{Reading(35), Reading(42.5)},
		ResetStatus:  http.StatusNoContent,
		Sessions:     make(map[string]struct{}),
		Requests:     make(map[string]int),
	}
	s.Server = httptest.NewTLSServer(s.routes())
	return s
}

// RootURL is the Redfish service root of the server
func (s *Server) RootURL() string {
	return s.URL + "/redfish/v1"
}

// CallIndex returns the position of the first request matching "METHOD /path", or -1
func (s *Server) CallIndex(key string) int {
	s.Lock()
	defer s.Unlock()
	return slices.Index(s.Calls, key)
}

// Count returns how many requests matched "METHOD /path"
func (s *Server) Count(key string) int {
	s.Lock()
	defer s.Unlock()
	return s.Requests[key]
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.count)
	r.Route("/redfish/v1", func(r chi.Router) {
		r.Get("/", s.serviceRoot)
		r.Post("/SessionService/Sessions", s.createSession)
		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/SessionService", s.sessionService)
			r.Delete("/SessionService/Sessions/{id}", s.deleteSession)
			r.Get("/Systems/system", s.system)
			r.Post("/Systems/system/Actions/ComputerSystem.Reset", s.reset)
			r.Get("/*", s.thermal)
		})
	})
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		key := r.Method + " " + r.URL.Path
		s.Requests[key]++
		s.Calls = append(s.Calls, key)
		s.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		_, ok := s.Sessions[r.Header.Get("X-Auth-Token")]
		s.Unlock()
		if !ok {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) serviceRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"@odata.id":      "/redfish/v1",
		"@odata.type":    "#ServiceRoot.v1_15_0.ServiceRoot",
		"RedfishVersion": "1.17.0",
	})
}

func (s *Server) sessionService(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"@odata.id": "/redfish/v1/SessionService", "ServiceEnabled": true})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		UserName string
		Password string
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()
	if creds.UserName != Username || creds.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
		return
	}
	if s.LoginStatus != http.StatusCreated {
		writeJSON(w, s.LoginStatus, map[string]string{"error": "refused"})
		return
	}

	s.nextID++
	id := strconv.Itoa(s.nextID)
	token := fmt.Sprintf("%s-%s", Token, id)
	s.Sessions[token] = struct{}{}
	if !s.OmitToken {
		w.Header().Set("X-Auth-Token", token)
	}
	w.Header().Set("Location", "/redfish/v1/SessionService/Sessions/"+id)
	writeJSON(w, http.StatusCreated, map[string]string{
		"@odata.id": "/redfish/v1/SessionService/Sessions/" + id,
		"Id":        id,
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.Lock()
	defer s.Unlock()
	delete(s.Sessions, fmt.Sprintf("%s-%s", Token, id))
	s.Deleted = append(s.Deleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) system(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	if s.SystemStatus != http.StatusOK {
		writeJSON(w, s.SystemStatus, map[string]string{"error": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, s.System)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var body struct{ ResetType string }
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.Lock()
	defer s.Unlock()
	s.Resets = append(s.Resets, body.ResetType)
	w.WriteHeader(s.ResetStatus)
}

func (s *Server) thermal(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	s.Lock()
	defer s.Unlock()
	if s.ThermalPath == "" || path != s.ThermalPath {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	body := map[string]any{"@odata.id": "/redfish/v1/" + path}
	if !s.OmitTemperature {
		temps := make([]map[string]any, 0, len(s.Temperatures))
		for i, t := range s.Temperatures {
			entry := map[string]any{"Name": fmt.Sprintf("sensor%d", i)}
			if t != nil {
				entry["ReadingCelsius"] = *t
			} else {
				entry["ReadingCelsius"] = nil
			}
			temps = append(temps, entry)
		}
		body["Temperatures"] = temps
	}
	writeJSON(w, http.StatusOK, body)
}
