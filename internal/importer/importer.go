package importer

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer/statement"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type Importer interface {
	Parse(r io.Reader) (*statement.Statement, error)
}

type VehicleResolver interface {
	VehicleByPlate(ctx context.Context, companyID uuid.UUID, plate string) (*fleet.Vehicle, error)
}

type CategorySuggester interface {
	Suggest(ctx context.Context, companyID uuid.UUID, rawDescription string) (ledger.Category, error)
}

type EventRecorder interface {
	RecordBatch(ctx context.Context, params []ledger.RecordParams) (*ledger.BatchResult, error)
}
