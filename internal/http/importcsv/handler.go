package importcsv

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/encoding"
	"github.com/MrJamesThe3rd/fleetledger/internal/http/respond"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
	"github.com/MrJamesThe3rd/fleetledger/internal/metrics"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type lineDTO struct {
	EventDate   string           `json:"event_date"`
	Amount      int64            `json:"amount"`
	Direction   ledger.Direction `json:"direction"`
	Category    ledger.Category  `json:"category"`
	Type        ledger.Type      `json:"type"`
	Description string           `json:"description"`
	VehicleID   *uuid.UUID       `json:"vehicle_id,omitempty"`
	EventID     *uuid.UUID       `json:"event_id,omitempty"`
}

type conflictDTO struct {
	Line            lineDTO   `json:"line"`
	ExistingEventID uuid.UUID `json:"existing_event_id"`
}

type importResponse struct {
	Profile       string           `json:"profile"`
	Charset       encoding.Charset `json:"charset"`
	DryRun        bool             `json:"dry_run"`
	Imported      int              `json:"imported"`
	Lines         []lineDTO        `json:"lines"`
	Conflicts     []conflictDTO    `json:"conflicts,omitempty"`
	UnknownPlates []string         `json:"unknown_plates,omitempty"`
}

// importCSV takes a multipart "file" field. With dry_run=true nothing is recorded.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	companyID, ok := respond.CompanyID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	dryRun, _ := strconv.ParseBool(r.FormValue("dry_run"))

	var res *importer.Result
	if dryRun {
		res, err = h.importSvc.Preview(r.Context(), companyID, file)
	} else {
		res, err = h.importSvc.Import(r.Context(), companyID, file)
	}

	profile, imported := "", 0
	if res != nil {
		profile, imported = res.Profile, len(res.Events)
	}

	metrics.ObserveImport(profile, imported, err)

	if errors.Is(err, importer.ErrDuplicateLines) {
		respond.JSON(w, http.StatusConflict, toResponse(res, dryRun))
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}

	respond.JSON(w, status, toResponse(res, dryRun))
}

func toResponse(res *importer.Result, dryRun bool) importResponse {
	resp := importResponse{
		Profile:       res.Profile,
		Charset:       res.Charset,
		DryRun:        dryRun,
		Imported:      len(res.Events),
		Lines:         make([]lineDTO, 0, len(res.Params)),
		UnknownPlates: res.UnknownPlates,
	}

	for i, p := range res.Params {
		line := toLine(p)

		if i < len(res.Events) {
			line.EventID = &res.Events[i].ID
		}

		resp.Lines = append(resp.Lines, line)
	}

	for _, c := range res.Conflicts {
		resp.Conflicts = append(resp.Conflicts, conflictDTO{
			Line:            toLine(c.Incoming),
			ExistingEventID: c.Existing.ID,
		})
	}

	return resp
}

func toLine(p ledger.RecordParams) lineDTO {
	return lineDTO{
		EventDate:   p.EventDate.Format(time.DateOnly),
		Amount:      p.Amount,
		Direction:   p.Direction,
		Category:    p.Category,
		Type:        p.Type,
		Description: p.Description,
		VehicleID:   p.VehicleID,
	}
}
