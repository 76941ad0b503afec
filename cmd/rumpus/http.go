package main

import (
	"encoding/json"
	"net/http"

	"github.com/rumpusparty/rumpus/pkg/registry"
	"github.com/rumpusparty/rumpus/pkg/round"
	"github.com/rumpusparty/rumpus/pkg/world"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// API is the small admin surface over the registry: available round
// types, recent history, and launching or ending rounds.
type API struct {
	registry *registry.Registry
	db       *gorm.DB
	mux      *http.ServeMux
}

func NewAPI(reg *registry.Registry, db *gorm.DB) *API {
	api := &API{
		registry: reg,
		db:       db,
		mux:      http.NewServeMux(),
	}
	api.mux.HandleFunc("/api/rounds", api.rounds)
	api.mux.HandleFunc("/api/history", api.history)
	api.mux.HandleFunc("/api/launch", api.launch)
	api.mux.HandleFunc("/api/end", api.end)
	return api
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (a *API) rounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.registry.Blueprints())
}

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.registry.Recent())
}

type launchRequest struct {
	Type         string `json:"type"`
	Participants []struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Health int    `json:"health"`
		Lives  int    `json:"lives"`
	} `json:"participants"`
}

func (a *API) launch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req launchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	participants := make([]*round.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		health := p.Health
		if health <= 0 {
			health = 1
		}
		participants = append(participants, round.NewParticipant(p.ID, p.Name, health, p.Lives))
	}

	bridge := world.NewBridge(participants)
	if a.db != nil {
		if err := bridge.AttachDB(a.db); err != nil {
			log.Warn().Err(err).Msg("launching without a change log")
		}
	}
	bridge.Snapshot()

	// Subscribe before launching so an immediate end is never missed.
	sub := a.registry.Events().Subscribe()

	driver := a.registry.Launch(req.Type, round.NewContext(participants))
	if driver == nil {
		sub.Done()
		http.Error(w, "launch rejected", http.StatusConflict)
		return
	}

	go func() {
		defer sub.Done()
		for ev := range sub.Recv() {
			if ev.Kind != round.EventEnded || ev.Result == nil {
				continue
			}
			if ev.Result.Outcome == round.OutcomeAbandoned {
				if err := bridge.Rollback(); err != nil {
					log.Warn().Err(err).Msg("could not roll back abandoned round")
				}
				return
			}
			if err := bridge.Apply(ev.Result); err != nil {
				log.Warn().Err(err).Msg("could not apply round result")
			}
			return
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{
		"type":  req.Type,
		"phase": driver.Phase().String(),
	})
}

func (a *API) end(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	a.registry.EndCurrent()
	w.WriteHeader(http.StatusNoContent)
}
