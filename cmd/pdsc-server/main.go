// Command pdsc-server exposes a PDSC database directory over HTTP:
// POST /query, POST /queryByObservationId, GET /queryByLatLon, and
// GET /queryByOverlap, matching the routes documented for the original
// system's HTTP client.
package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/jplmlia/pdsc/internal/query"
	"github.com/jplmlia/pdsc/internal/store"
	"github.com/jplmlia/pdsc/internal/triseg"
	"github.com/jplmlia/pdsc/pkg/pdsc"
)

const (
	databaseDirVar = "PDSC_DATABASE_DIR"
	hostVar        = "PDSC_SERVER_HOST"
	portVar        = "PDSC_SERVER_PORT"
)

func main() {
	dbDir := os.Getenv(databaseDirVar)
	if dbDir == "" {
		log.Fatalf("%s must be set to a PDSC database directory", databaseDirVar)
	}

	client, err := pdsc.NewClient(dbDir)
	if err != nil {
		log.Fatalf("opening database directory %q: %v", dbDir, err)
	}

	srv := &server{client: client}

	mux := http.NewServeMux()
	mux.HandleFunc("/query", srv.handleQuery)
	mux.HandleFunc("/queryByObservationId", srv.handleQueryByObservationID)
	mux.HandleFunc("/queryByLatLon", srv.handleQueryByLatLon)
	mux.HandleFunc("/queryByOverlap", srv.handleQueryByOverlap)

	addr := os.Getenv(hostVar)
	if port := os.Getenv(portVar); port != "" {
		addr += ":" + port
	}
	if addr == "" {
		addr = ":8080"
	}

	log.Printf("pdsc-server listening on %s (database dir %s)", addr, dbDir)
	log.Fatal(http.ListenAndServe(addr, mux))
}

type server struct {
	client *pdsc.Client
}

// conditionTriple decodes one [column, comparator, value] JSON triple,
// matching the original HTTP client's `conditions` parameter shape.
type conditionTriple [3]any

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	instrument := r.FormValue("instrument")
	var conditions []pdsc.Condition
	if raw := r.FormValue("conditions"); raw != "" {
		var triples []conditionTriple
		if err := json.Unmarshal([]byte(raw), &triples); err != nil {
			http.Error(w, "invalid conditions: "+err.Error(), http.StatusBadRequest)
			return
		}
		for _, t := range triples {
			col, _ := t[0].(string)
			comp, _ := t[1].(string)
			conditions = append(conditions, pdsc.Condition{Column: col, Comparator: comp, Value: t[2]})
		}
	}

	recs, err := s.client.Query(instrument, conditions)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, recs)
}

func (s *server) handleQueryByObservationID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	instrument := r.FormValue("instrument")
	var ids []string
	raw := r.FormValue("observation_ids")
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// A bare JSON string is also accepted, matching the original
		// client's "single id or collection" parameter.
		var single string
		if err := json.Unmarshal([]byte(raw), &single); err != nil {
			http.Error(w, "invalid observation_ids: "+err.Error(), http.StatusBadRequest)
			return
		}
		ids = []string{single}
	}

	recs, err := s.client.QueryByObservationID(instrument, ids)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, recs)
}

func (s *server) handleQueryByLatLon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	instrument := q.Get("instrument")
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		http.Error(w, "invalid lat: "+err.Error(), http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		http.Error(w, "invalid lon: "+err.Error(), http.StatusBadRequest)
		return
	}
	radius := 0.0
	if r := q.Get("radius"); r != "" {
		radius, err = strconv.ParseFloat(r, 64)
		if err != nil {
			http.Error(w, "invalid radius: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	ids, err := s.client.FindObservationsOfLatLon(instrument, lat, lon, radius)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, ids)
}

func (s *server) handleQueryByOverlap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	instrument := q.Get("instrument")
	observationID := q.Get("observation_id")
	otherInstrument := q.Get("other_instrument")

	ids, err := s.client.FindOverlappingObservations(instrument, observationID, otherInstrument)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, ids)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("pdsc-server: encoding response: %v", err)
	}
}

func writeQueryError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var unknownInstrument *query.ErrUnknownInstrument
	var noSpatialIndex *query.ErrNoSpatialIndex
	var badPredicate *store.ErrBadPredicate
	var invalidPointQuery *triseg.ErrInvalidPointQuery
	switch {
	case errors.As(err, &unknownInstrument),
		errors.As(err, &noSpatialIndex),
		errors.As(err, &badPredicate),
		errors.As(err, &invalidPointQuery):
		status = http.StatusBadRequest
	}

	http.Error(w, err.Error(), status)
}
