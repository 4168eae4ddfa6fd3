package fleet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

var company = uuid.MustParse("7d0c5f2a-1b3e-4c6d-8e9f-0a1b2c3d4e5f")

func truck() *fleet.Vehicle {
	return &fleet.Vehicle{
		ID:        uuid.New(),
		CompanyID: company,
		Plate:     "AA-11-BB",
		Profile:   fuel.Profile{EmptyKmPerLiter: 2.5, LoadedKmPerLiter: 2.0},
	}
}

func TestService_CreateVehicle(t *testing.T) {
	type args struct {
		params fleet.CreateVehicleParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *fleet.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: fleet.CreateVehicleParams{
				CompanyID: company,
				Plate:     " aa-11 bb ",
				Name:      "Volvo FH",
				Profile:   fuel.Profile{EmptyKmPerLiter: 3, LoadedKmPerLiter: 2.4},
			}},
			setupMock: func(m *fleet.MockRepository) {
				m.EXPECT().
					CreateVehicle(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, v *fleet.Vehicle) error {
						assert.Equal(t, "AA-11BB", v.Plate)
						v.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name: "LoadedBeatsEmpty",
			args: args{params: fleet.CreateVehicleParams{
				CompanyID: company,
				Plate:     "X",
				Profile:   fuel.Profile{EmptyKmPerLiter: 2, LoadedKmPerLiter: 3},
			}},
			wantErr: fleet.ErrInvalidVehicle,
		},
		{
			name: "ZeroEfficiency",
			args: args{params: fleet.CreateVehicleParams{
				CompanyID: company,
				Plate:     "X",
				Profile:   fuel.Profile{EmptyKmPerLiter: 2},
			}},
			wantErr: fleet.ErrInvalidVehicle,
		},
		{
			name:    "MissingPlate",
			args:    args{params: fleet.CreateVehicleParams{CompanyID: company, Profile: fuel.Profile{EmptyKmPerLiter: 2, LoadedKmPerLiter: 1}}},
			wantErr: fleet.ErrInvalidVehicle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := fleet.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := fleet.NewService(repo, fleet.NewMockEventRecorder(ctrl))
			got, err := svc.CreateVehicle(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_PlanTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := fleet.NewMockRepository(ctrl)
	svc := fleet.NewService(repo, fleet.NewMockEventRecorder(ctrl))

	v := truck()
	repo.EXPECT().GetVehicle(gomock.Any(), company, v.ID).Return(v, nil)

	plan, err := svc.PlanTrip(context.Background(), company, fleet.PlanParams{
		VehicleID:     v.ID,
		DistanceKm:    560,
		LoadStatus:    fuel.LoadStatusLoaded,
		BufferPercent: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 294.0, plan.TotalLiters)
}

func TestService_PlanTrip_UnknownVehicle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := fleet.NewMockRepository(ctrl)
	svc := fleet.NewService(repo, fleet.NewMockEventRecorder(ctrl))

	id := uuid.New()
	repo.EXPECT().GetVehicle(gomock.Any(), company, id).Return(nil, fleet.ErrNotFound)

	_, err := svc.PlanTrip(context.Background(), company, fleet.PlanParams{VehicleID: id, DistanceKm: 1, LoadStatus: fuel.LoadStatusEmpty})
	assert.ErrorIs(t, err, fleet.ErrNotFound)
}

func TestService_CompareLoads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := fleet.NewMockRepository(ctrl)
	svc := fleet.NewService(repo, fleet.NewMockEventRecorder(ctrl))

	v := truck()
	repo.EXPECT().GetVehicle(gomock.Any(), company, v.ID).Return(v, nil)

	cmp, err := svc.CompareLoads(context.Background(), company, v.ID, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 50.0, cmp.Loaded.TotalLiters)
	assert.Equal(t, 40.0, cmp.Empty.TotalLiters)
	assert.InDelta(t, 10.0, cmp.DeltaLiters, 1e-9)
	assert.InDelta(t, 20.0, cmp.DeltaPercent, 1e-9)
}

func TestService_DeployTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := fleet.NewMockRepository(ctrl)
	svc := fleet.NewService(repo, fleet.NewMockEventRecorder(ctrl))

	v := truck()
	driver := uuid.New()

	repo.EXPECT().GetVehicle(gomock.Any(), company, v.ID).Return(v, nil)
	repo.EXPECT().
		CreateTrip(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, trip *fleet.Trip) error {
			trip.ID = uuid.New()
			trip.CreatedAt = time.Now()

			return nil
		})

	got, err := svc.DeployTrip(context.Background(), fleet.DeployParams{
		CompanyID:     company,
		VehicleID:     v.ID,
		DriverID:      &driver,
		Origin:        "Lisboa",
		Destination:   "Madrid",
		DistanceKm:    560,
		LoadStatus:    fuel.LoadStatusLoaded,
		BufferPercent: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, 280.0, got.Fuel.BaseLiters)
	assert.Equal(t, 14.0, got.Fuel.BufferLiters)
	assert.Equal(t, 294.0, got.Fuel.TotalLiters)
	assert.Equal(t, &driver, got.DriverID)
}

func TestService_DeployTrip_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := fleet.NewMockRepository(ctrl)
	svc := fleet.NewService(repo, fleet.NewMockEventRecorder(ctrl))

	_, err := svc.DeployTrip(context.Background(), fleet.DeployParams{CompanyID: company, Origin: "A"})
	assert.ErrorIs(t, err, fleet.ErrInvalidTrip)

	v := truck()
	repo.EXPECT().GetVehicle(gomock.Any(), company, v.ID).Return(v, nil)

	_, err = svc.DeployTrip(context.Background(), fleet.DeployParams{
		CompanyID:     company,
		VehicleID:     v.ID,
		Origin:        "A",
		Destination:   "B",
		DistanceKm:    100,
		LoadStatus:    fuel.LoadStatusLoaded,
		BufferPercent: 120,
	})
	assert.ErrorIs(t, err, fuel.ErrInvalidInput)
}

func TestService_RecordRefuel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := fleet.NewMockRepository(ctrl)
	recorder := fleet.NewMockEventRecorder(ctrl)
	svc := fleet.NewService(repo, recorder)

	driver := uuid.New()
	trip := &fleet.Trip{
		ID:          uuid.New(),
		CompanyID:   company,
		VehicleID:   uuid.New(),
		DriverID:    &driver,
		Origin:      "Porto",
		Destination: "Faro",
	}
	date := time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().GetTrip(gomock.Any(), company, trip.ID).Return(trip, nil)
	recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p ledger.RecordParams) (*ledger.Event, error) {
			assert.Equal(t, ledger.DirectionOut, p.Direction)
			assert.Equal(t, ledger.CategoryFuel, p.Category)
			assert.Equal(t, ledger.TypeFuelPurchase, p.Type)
			assert.Equal(t, trip.VehicleID, *p.VehicleID)
			assert.Equal(t, trip.ID, *p.TripID)
			assert.Equal(t, &driver, p.DriverID)
			assert.Equal(t, "Fuel Porto → Faro", p.Description)

			return &ledger.Event{ID: uuid.New(), Amount: p.Amount}, nil
		})

	got, err := svc.RecordRefuel(context.Background(), fleet.RefuelParams{
		CompanyID: company,
		TripID:    trip.ID,
		Amount:    42050,
		Date:      date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42050), got.Amount)
}

func TestService_RecordRefuel_RecorderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := fleet.NewMockRepository(ctrl)
	recorder := fleet.NewMockEventRecorder(ctrl)
	svc := fleet.NewService(repo, recorder)

	trip := &fleet.Trip{ID: uuid.New(), CompanyID: company, VehicleID: uuid.New()}

	repo.EXPECT().GetTrip(gomock.Any(), company, trip.ID).Return(trip, nil)
	recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil, ledger.ErrMalformedEvent)

	_, err := svc.RecordRefuel(context.Background(), fleet.RefuelParams{CompanyID: company, TripID: trip.ID})
	assert.True(t, errors.Is(err, ledger.ErrMalformedEvent))
}
